package controller

import (
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICharacterController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type characterController struct {
	characterService service.ICharacterService
}

func NewCharacterController(characterService service.ICharacterService) ICharacterController {
	return &characterController{characterService: characterService}
}

func (c *characterController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/character/v1")
	h.Get("", c.List)
}

func (c *characterController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get characters", c.characterService.List()))
}
