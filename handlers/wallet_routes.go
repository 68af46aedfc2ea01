// handlers/wallet_routes.go
package handlers

import (
	"web3-dashboard/middleware"
	"web3-dashboard/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupWalletRoutes mounts the wallet-data, database, proxy and wallet
// session routes.
func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService, proxyService *services.ProxyService,
	client *services.UserDataClient, manager *services.WalletManager, apiToken string, logger *zap.Logger) {
	api := app.Group("/api")

	// 🔓 Public routes
	api.Get("/wallet-data", walletService.GetWalletData)
	api.Get("/database", walletService.ListWallets)
	api.Patch("/database", walletService.UpdateWallet)

	// 🔐 Admin routes, gated by API_TOKEN on each route
	requireToken := middleware.APITokenMiddleware(apiToken, logger)
	api.Delete("/database", requireToken, walletService.DeleteWallet)
	api.Get("/database/export", requireToken, walletService.Export)

	// Local proxy hop used by the user-data client fallback
	api.Post("/user-data", proxyService.PostUserData)
	api.Get("/user-data", proxyService.GetUserData)
	api.Post("/confirm-delegation", proxyService.ConfirmDelegation)
	api.Post("/custom", proxyService.SubmitKeys)

	// Dashboard-facing client operations
	api.Post("/dashboard/user-data", client.PostDashboardUserData)
	api.Get("/dashboard/wallet-data", client.GetDashboardWalletData)

	// Wallet session
	wallet := api.Group("/wallet")
	wallet.Get("/", manager.GetWallet)
	wallet.Post("/connect", manager.PostConnect)
	wallet.Post("/disconnect", manager.PostDisconnect)
	wallet.Post("/network", manager.PostNetwork)
	wallet.Post("/refresh-balance", manager.PostRefreshBalance)
}
