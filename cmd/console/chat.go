package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"fellowship-chat-be/internal/bootstrap"
	"fellowship-chat-be/internal/config"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/dialogue"
	"fellowship-chat-be/pkg/llm"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var startCharacter string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with a random character, or the one
named by --character. Say "talk to <name>" to switch, or "exit" to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&startCharacter, "character", "c", "", "character to start with")
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	// Logs go to a file so they do not interleave with the conversation.
	sysLogger := logger.NewIsolatedLogger("logs/console.log")
	defer sysLogger.Sync()

	core, err := bootstrap.NewCore(cfg, sysLogger)
	if err != nil {
		return err
	}
	defer core.Close(context.Background())

	var opts []dialogue.Option
	if startCharacter != "" {
		opts = append(opts, dialogue.WithStartCharacter(startCharacter))
	}
	session, err := dialogue.NewSession(uuid.NewString(), core.Registry, core.Factory, sysLogger, opts...)
	if err != nil {
		return err
	}
	defer session.Close(context.Background())

	ctx := cmd.Context()
	color.Cyan("The Fellowship: %s\n", strings.Join(core.Registry.Names(), ", "))
	color.Yellow("Preparing %s...", session.ActiveCharacter())
	session.Warm(ctx)

	history := session.History(session.ActiveCharacter())
	printCharacter(session.ActiveCharacter(), history[len(history)-1].Content)
	visited := map[string]bool{session.ActiveCharacter(): true}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgGreen, color.Bold).Print("You: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			color.Cyan("Farewell.")
			return nil
		}

		reply := session.Handle(ctx, text)
		if reply.Switched {
			for _, m := range seededOnSwitch(session, reply, visited) {
				printCharacter(reply.Character, m.Content)
			}
			color.Yellow("%s", reply.Message.Content)
			continue
		}
		printCharacter(reply.Character, reply.Message.Content)
	}
}

// seededOnSwitch returns what a first switch to a character added ahead of
// the banner (its greeting). Later switches add nothing new.
func seededOnSwitch(session *dialogue.Session, reply dialogue.Reply, visited map[string]bool) []llm.Message {
	if !reply.Switched || visited[reply.Character] {
		return nil
	}
	visited[reply.Character] = true
	history := session.History(reply.Character)
	if len(history) == 0 {
		return nil
	}
	return history[:len(history)-1]
}

func printCharacter(name, content string) {
	color.New(color.FgMagenta, color.Bold).Printf("%s: ", name)
	fmt.Println(content)
}
