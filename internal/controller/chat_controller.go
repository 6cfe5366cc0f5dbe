package controller

import (
	"errors"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	jwtSecret   string
	rateLimiter *serverutils.RateLimiter
}

func NewChatController(chatService service.IChatService, jwtSecret string, rateLimiter *serverutils.RateLimiter) IChatController {
	return &chatController{
		chatService: chatService,
		jwtSecret:   jwtSecret,
		rateLimiter: rateLimiter,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("session", serverutils.RateLimitMiddleware(c.rateLimiter), c.CreateSession)

	auth := serverutils.JwtMiddleware(c.jwtSecret)
	h.Post("message", auth, serverutils.RateLimitMiddleware(c.rateLimiter), c.SendChat)
	h.Get("history", auth, c.GetHistory)
	h.Delete("session", auth, c.EndSession)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	sessionID := ctx.Locals(serverutils.LocalSessionID).(string)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.UserContext(), sessionID, &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	sessionID := ctx.Locals(serverutils.LocalSessionID).(string)

	res, err := c.chatService.GetHistory(ctx.UserContext(), sessionID, ctx.Query("character"))
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) EndSession(ctx *fiber.Ctx) error {
	sessionID := ctx.Locals(serverutils.LocalSessionID).(string)

	if err := c.chatService.EndSession(ctx.UserContext(), sessionID); err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session ended", nil))
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnknownCharacter):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
