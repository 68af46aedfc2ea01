// handlers/token_routes.go
package handlers

import (
	"web3-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTokenRoutes(app *fiber.App, tokenService *services.TokenService) {
	tokens := app.Group("/api/tokens")
	tokens.Get("/balance", tokenService.GetBalance)
	tokens.Post("/transfer", tokenService.PostTransfer)
}

func SetupChatRoutes(app *fiber.App, aiService *services.AIService) {
	app.Post("/api/chat", aiService.PostChat)
}
