package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/service"
	"fellowship-chat-be/pkg/character"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterControllerList(t *testing.T) {
	registry := character.NewRegistry([]character.Record{
		{Name: "Frodo", Race: "Hobbit", Greeting: "Hello there.", Quotes: []string{"I will take the Ring."}},
		{Name: "Gimli", Race: "Dwarf", Quotes: []string{}},
	})
	app := fiber.New()
	NewCharacterController(service.NewCharacterService(registry)).RegisterRoutes(app.Group("/api"))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/character/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out serverutils.BaseResponse[[]dto.CharacterResponse]
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Data, 2)
	assert.Equal(t, "Frodo", out.Data[0].Name)
	assert.Equal(t, "Hobbit", out.Data[0].Race)
	assert.Equal(t, []string{"I will take the Ring."}, out.Data[0].Quotes)
	assert.Equal(t, "Gimli", out.Data[1].Name)
	assert.NotNil(t, out.Data[1].Quotes)
	assert.Contains(t, string(body), `"name":"Gimli","race":"Dwarf","greeting":"","quotes":[]`)
}
