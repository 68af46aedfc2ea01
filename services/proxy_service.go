// services/proxy_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProxyService is the local hop the user-data client falls back to. It
// forwards to the network's external API, or serves from the local store
// when external forwarding is disabled.
type ProxyService struct {
	Store     WalletStore
	Endpoints Endpoints
	Logger    *zap.Logger

	upstream *upstream
}

func NewProxyService(store WalletStore, endpoints Endpoints, client *http.Client, timeout time.Duration, metrics *Metrics, logger *zap.Logger) *ProxyService {
	return &ProxyService{
		Store:     store,
		Endpoints: endpoints,
		Logger:    logger,
		upstream:  newUpstream(client, timeout, metrics),
	}
}

// proxyError writes upstream failures the way the external API reported
// them.
func (s *ProxyService) proxyError(c *fiber.Ctx, err error) error {
	var (
		upstream     *UpstreamError
		connectivity *ConnectivityError
	)
	switch {
	case errors.As(err, &upstream):
		s.Logger.Error("❌ [PROXY] External API error", zap.Int("status", upstream.Status), zap.String("details", upstream.Body))
		return c.Status(upstream.Status).JSON(fiber.Map{
			"error":   fmt.Sprintf("External API returned %d", upstream.Status),
			"details": upstream.Body,
		})
	case errors.As(err, &connectivity):
		s.Logger.Error("❌ [PROXY] Error forwarding to external API", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to connect to external API",
			"details": connectivity.Err.Error(),
		})
	}
	return respondError(c, err)
}

// passthrough answers with the upstream JSON, or wraps non-JSON text.
func passthrough(c *fiber.Ctx, body []byte) error {
	if json.Valid(body) {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
	return c.JSON(fiber.Map{"text": string(body)})
}

// PostUserData is POST /api/user-data.
func (s *ProxyService) PostUserData(c *fiber.Ctx) error {
	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	personal, _ := payload["personalData"].(map[string]any)
	walletAddress, _ := personal["walletAddress"].(string)
	if personal == nil || strings.TrimSpace(walletAddress) == "" {
		s.Logger.Warn("⚠️ [PROXY] Missing required fields on user-data")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}

	networkName, _ := payload["network"].(string)
	network := models.NetworkOrDefault(networkName)

	if s.Endpoints.UseExternalAPI {
		payload["backendUrl"] = s.Endpoints.BackendURL
		target := joinURL(s.Endpoints.ExternalBase(network), "user-data/")
		s.Logger.Info("➡️ [PROXY] Forwarding user data",
			zap.String("network", string(network)), zap.String("url", target))

		body, err := s.upstream.call(c.UserContext(), "proxy-user-data", http.MethodPost, target, payload)
		if err != nil {
			return s.proxyError(c, err)
		}
		return passthrough(c, body)
	}

	agentModel, _ := payload["agentModel"].(string)
	if agentModel == "" {
		agentModel = "gpt-3.5-turbo"
	}
	blob, _ := json.Marshal(personal)

	if _, err := s.Store.Upsert(c.UserContext(), models.Wallet{Address: walletAddress, PersonalData: string(blob)}); err != nil {
		s.Logger.Error("❌ [PROXY] Failed to save data to database", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save data to database"})
	}
	s.Logger.Info("💾 [PROXY] Data saved to local database", zap.String("address", walletAddress))

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "User data saved successfully",
		"walletAddress": walletAddress,
		"agentModel":    agentModel,
	})
}

// GetUserData is GET /api/user-data.
func (s *ProxyService) GetUserData(c *fiber.Ctx) error {
	if s.Endpoints.UseExternalAPI {
		network := models.NetworkOrDefault(c.Query("network"))
		query := url.Values{}
		for key, value := range c.Queries() {
			query.Set(key, value)
		}
		target := joinURL(s.Endpoints.ExternalBase(network), "user-data/")
		if encoded := query.Encode(); encoded != "" {
			target += "?" + encoded
		}

		body, err := s.upstream.call(c.UserContext(), "proxy-user-data", http.MethodGet, target, nil)
		if err != nil {
			return s.proxyError(c, err)
		}
		return passthrough(c, body)
	}

	walletAddress := strings.TrimSpace(c.Query("walletAddress"))
	if walletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}
	wallet, err := s.Store.Get(c.UserContext(), walletAddress)
	if err != nil {
		s.Logger.Error("❌ [PROXY] Error fetching user data", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user data"})
	}
	if wallet == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wallet not found"})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"walletAddress": walletAddress,
		"personalData":  wallet.PersonalData,
	})
}

// ConfirmDelegation is POST /api/confirm-delegation. Only request_id and
// confirmed are forwarded.
func (s *ProxyService) ConfirmDelegation(c *fiber.Ctx) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	var requestID, networkName string
	if err := json.Unmarshal(raw["request_id"], &requestID); err != nil || requestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing request_id field"})
	}
	var confirmed bool
	if err := json.Unmarshal(raw["confirmed"], &confirmed); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid confirmed field"})
	}
	_ = json.Unmarshal(raw["network"], &networkName)
	network := models.NetworkOrDefault(networkName)

	s.Logger.Info("🤝 [PROXY] Delegation confirmation received",
		zap.String("request_id", requestID),
		zap.Bool("confirmed", confirmed),
		zap.String("network", string(network)))

	if s.Endpoints.UseExternalAPI {
		target := joinURL(s.Endpoints.ExternalBase(network), "confirm-delegation/")
		body, err := s.upstream.call(c.UserContext(), "proxy-confirm-delegation", http.MethodPost, target, fiber.Map{
			"request_id": requestID,
			"confirmed":  confirmed,
		})
		if err != nil {
			return s.proxyError(c, err)
		}
		return passthrough(c, body)
	}

	message := "Delegation was declined by the user"
	if confirmed {
		message = "Delegation confirmed successfully"
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    message,
		"request_id": requestID,
		"confirmed":  confirmed,
		"network":    network,
	})
}

// SubmitKeys is POST /api/custom. Keys are validated and acknowledged; they
// are never logged or stored.
func (s *ProxyService) SubmitKeys(c *fiber.Ctx) error {
	var input struct {
		PublicKey string `json:"publicKey"`
		SecretKey string `json:"secretKey"`
		APIKey    string `json:"apiKey"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}
	if input.PublicKey == "" || input.SecretKey == "" || input.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}

	s.Logger.Info("🔑 [KEYS] Received keys",
		zap.String("public_key", input.PublicKey),
		zap.Int("secret_key_length", len(input.SecretKey)),
		zap.Int("api_key_length", len(input.APIKey)))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Data received successfully",
		"data": fiber.Map{
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"status":    "processed",
		},
	})
}
