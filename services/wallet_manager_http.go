// services/wallet_manager_http.go
package services

import (
	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
)

// GetWallet is GET /api/wallet.
func (m *WalletManager) GetWallet(c *fiber.Ctx) error {
	return c.JSON(m.Status())
}

// PostConnect is POST /api/wallet/connect.
func (m *WalletManager) PostConnect(c *fiber.Ctx) error {
	status, err := m.Connect(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// PostDisconnect is POST /api/wallet/disconnect.
func (m *WalletManager) PostDisconnect(c *fiber.Ctx) error {
	return c.JSON(m.Disconnect())
}

// PostNetwork is POST /api/wallet/network. An empty body toggles;
// {"network": "saga"} selects.
func (m *WalletManager) PostNetwork(c *fiber.Ctx) error {
	var input struct {
		Network string `json:"network"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
		}
	}

	if input.Network == "" {
		status, err := m.ToggleNetwork(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	}

	network, err := models.ParseNetwork(input.Network)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	status, err := m.SelectNetwork(c.UserContext(), network)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// PostRefreshBalance is POST /api/wallet/refresh-balance.
func (m *WalletManager) PostRefreshBalance(c *fiber.Ctx) error {
	if _, err := m.Account(); err != nil {
		return respondError(c, err)
	}
	if err := m.RefreshBalance(c.UserContext()); err != nil {
		m.Logger.Sugar().Warnf("⚠️ [WALLET] Balance refresh failed: %v", err)
	}
	return c.JSON(m.Status())
}
