// handlers/delegation_routes.go
package handlers

import (
	"web3-dashboard/middleware"
	"web3-dashboard/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupDelegationRoutes exposes pending confirmations to the dashboard.
// The stream takes the API token from ?token= since EventSource cannot set
// headers.
func SetupDelegationRoutes(app *fiber.App, broker *services.ConfirmationBroker, apiToken string, logger *zap.Logger) {
	delegations := app.Group("/api/delegations")
	delegations.Get("/pending", broker.ListPending)
	delegations.Get("/stream", middleware.SSETokenMiddleware(apiToken, logger), broker.StreamSSE)
	delegations.Post("/:requestId/decision", broker.PostDecision)
}
