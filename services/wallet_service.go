// services/wallet_service.go
package services

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WalletService serves the local wallet-data and database routes.
type WalletService struct {
	Store     WalletStore
	Blog      *BlogStore
	Endpoints Endpoints
	Logger    *zap.Logger

	upstream *upstream
}

func NewWalletService(store WalletStore, blog *BlogStore, endpoints Endpoints, client *http.Client, timeout time.Duration, metrics *Metrics, logger *zap.Logger) *WalletService {
	return &WalletService{
		Store:     store,
		Blog:      blog,
		Endpoints: endpoints,
		Logger:    logger,
		upstream:  newUpstream(client, timeout, metrics),
	}
}

// GetWalletData resolves ?address= against the remote wallet-data API
// first and the local store second. An unknown wallet is a 200 with empty
// personal data.
func (s *WalletService) GetWalletData(c *fiber.Ctx) error {
	address := strings.TrimSpace(c.Query("address"))
	network := models.NetworkOrDefault(c.Query("network"))

	if address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}

	if s.Endpoints.UseExternalAPI {
		target := joinURL(s.Endpoints.ExternalBase(network), "wallet-data/") + "?address=" + url.QueryEscape(address)
		body, err := s.upstream.call(c.UserContext(), "wallet-data", http.MethodGet, target, nil)
		switch {
		case err != nil:
			s.Logger.Warn("⚠️ [WALLET-DATA] External API failed, falling back to local database",
				zap.String("address", address), zap.String("network", string(network)), zap.Error(err))
			s.upstream.metrics.fallback("wallet-data")
		case !json.Valid(body):
			s.Logger.Warn("⚠️ [WALLET-DATA] External API returned non-JSON, falling back to local database",
				zap.String("address", address))
			s.upstream.metrics.fallback("wallet-data")
		default:
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
	}

	wallet, err := s.Store.Get(c.UserContext(), address)
	if err != nil {
		s.Logger.Error("❌ [WALLET-DATA] Error retrieving wallet data", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	if wallet == nil {
		return c.JSON(fiber.Map{"message": "Wallet not found", "personalData": ""})
	}

	return c.JSON(fiber.Map{
		"address":      wallet.Address,
		"personalData": wallet.PersonalData,
		"network":      network,
	})
}

// ListWallets is GET /api/database.
func (s *WalletService) ListWallets(c *fiber.Ctx) error {
	wallets, err := s.Store.GetAll(c.UserContext())
	if err != nil {
		s.Logger.Error("❌ [DATABASE] Query error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "An error occurred while querying the database.",
		})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"data":      wallets,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// blobText accepts a JSON string as-is and keeps any other JSON value as
// its text. null and absent become "".
func blobText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// UpdateWallet is PATCH /api/database {address, personalData}.
func (s *WalletService) UpdateWallet(c *fiber.Ctx) error {
	var input struct {
		Address      string          `json:"address"`
		PersonalData json.RawMessage `json:"personalData"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid JSON body"})
	}
	if strings.TrimSpace(input.Address) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Wallet address is required."})
	}

	ctx := c.UserContext()
	existing, err := s.Store.Get(ctx, input.Address)
	if err != nil {
		s.Logger.Error("❌ [DATABASE] Wallet lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "An error occurred while updating the wallet."})
	}

	personalData := blobText(input.PersonalData)
	if existing == nil && personalData == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Wallet not found and no personal data provided for creation.",
		})
	}
	if personalData == "" {
		personalData = existing.PersonalData
	}

	wallet, err := s.Store.Upsert(ctx, models.Wallet{Address: input.Address, PersonalData: personalData})
	if err != nil {
		s.Logger.Error("❌ [DATABASE] Wallet update error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "An error occurred while updating the wallet."})
	}

	message := "Wallet created successfully"
	if existing != nil {
		message = "Wallet updated successfully"
	}
	s.Logger.Info("💾 [DATABASE] "+message, zap.String("address", wallet.Address))
	return c.JSON(fiber.Map{"success": true, "wallet": wallet, "message": message})
}

// DeleteWallet is DELETE /api/database {address}.
func (s *WalletService) DeleteWallet(c *fiber.Ctx) error {
	var input struct {
		Address string `json:"address"`
	}
	if err := c.BodyParser(&input); err != nil || strings.TrimSpace(input.Address) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Wallet address is required."})
	}

	deleted, err := s.Store.Delete(c.UserContext(), input.Address)
	if err != nil {
		s.Logger.Error("❌ [DATABASE] Wallet deletion error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "An error occurred while deleting the wallet."})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Wallet not found or deletion failed."})
	}

	s.Logger.Info("🗑️ [DATABASE] Wallet deleted", zap.String("address", models.NormalizeAddress(input.Address)))
	return c.JSON(fiber.Map{"success": true, "message": "Wallet deleted successfully"})
}

// Export is GET /api/database/export.
func (s *WalletService) Export(c *fiber.Ctx) error {
	snap, err := BuildSnapshot(c.UserContext(), s.Store, s.Blog)
	if err != nil {
		s.Logger.Error("❌ [DATABASE] Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export database"})
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="dashboard-export.json"`)
	return c.JSON(snap)
}
