package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"fellowship-chat-be/internal/config"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/events"
	pktNats "fellowship-chat-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	tailType    string
	tailDurable string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print chat events from the NATS stream",
	RunE:  runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailType, "type", "t", "*", "event type to follow (SESSION_STARTED, CHAT_TURN, SESSION_ENDED)")
	tailCmd.Flags().StringVar(&tailDurable, "durable", "", "durable consumer name; empty follows new events only")
}

func runTail(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		return errors.New("NATS_URL is not set")
	}
	sysLogger := logger.NewIsolatedLogger("logs/console.log")
	defer sysLogger.Sync()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = sub.Subscribe(ctx, tailType, tailDurable, func(_ context.Context, event events.Event) error {
		color.New(color.FgCyan).Printf("%s ", event.Timestamp().Format(time.RFC3339))
		color.New(color.FgYellow, color.Bold).Printf("%s ", event.EventType())
		color.White("%v", event.Payload())
		return nil
	})
	if err != nil {
		return err
	}

	color.Green("Following %s events. Ctrl+C to stop.", tailType)
	<-ctx.Done()
	return nil
}
