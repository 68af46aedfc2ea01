// services/userdata_client.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// NetworkSource supplies the network used when a caller does not name one.
type NetworkSource interface {
	Network() models.Network
}

// UserDataPayload is sent to the user-data API.
type UserDataPayload struct {
	PersonalData models.PersonalDataEnvelope `json:"personalData"`
	AgentModel   string                      `json:"agentModel"`
	Prompt       string                      `json:"prompt"`
	Network      models.Network              `json:"network"`
}

// WalletDataResult is the personal data known for an address. Empty means
// unknown.
type WalletDataResult struct {
	PersonalData string              `json:"personalData"`
	Normalized   models.PersonalData `json:"normalized"`
}

// SendResult is the reply to SendUserData.
type SendResult struct {
	Via        string            `json:"via"`
	Response   json.RawMessage   `json:"response"`
	Delegation *DelegationResult `json:"delegation,omitempty"`
}

// UserDataClient reads and writes personal data for the connected wallet.
type UserDataClient struct {
	Endpoints Endpoints
	Flow      *DelegationFlow
	Networks  NetworkSource
	Logger    *zap.Logger

	upstream *upstream
}

func NewUserDataClient(endpoints Endpoints, flow *DelegationFlow, client *http.Client, timeout time.Duration, metrics *Metrics, logger *zap.Logger) *UserDataClient {
	return &UserDataClient{
		Endpoints: endpoints,
		Flow:      flow,
		Logger:    logger,
		upstream:  newUpstream(client, timeout, metrics),
	}
}

func (u *UserDataClient) network(n models.Network) models.Network {
	if n != "" {
		return n
	}
	if u.Networks != nil {
		return u.Networks.Network()
	}
	return models.DefaultNetwork
}

// GetWalletData looks up address through the local wallet-data route. It
// never fails: any error yields empty personal data.
func (u *UserDataClient) GetWalletData(ctx context.Context, address string, network models.Network) WalletDataResult {
	network = u.network(network)
	target := joinURL(u.Endpoints.LocalAPIURL, "api/wallet-data") +
		"?address=" + url.QueryEscape(address) + "&network=" + url.QueryEscape(string(network))

	body, err := u.upstream.call(ctx, "local-wallet-data", http.MethodGet, target, nil)
	if err != nil {
		u.Logger.Warn("⚠️ [USER-DATA] Error fetching wallet data",
			zap.String("address", address), zap.Error(err))
		return WalletDataResult{}
	}

	personalData := extractPersonalData(body)
	return WalletDataResult{
		PersonalData: personalData,
		Normalized:   models.NormalizePersonalData(personalData),
	}
}

// extractPersonalData reads personalData at the top level or under
// data.personalData.
func extractPersonalData(body []byte) string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return ""
	}
	if pd := blobText(top["personalData"]); pd != "" {
		return pd
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(top["data"], &nested); err != nil {
		return ""
	}
	return blobText(nested["personalData"])
}

// SendUserData posts payload to the network's user-data API, falling back to
// the local route once. A reply carrying a requestId runs the delegation
// flow before returning.
func (u *UserDataClient) SendUserData(ctx context.Context, payload UserDataPayload) (*SendResult, error) {
	if strings.TrimSpace(payload.PersonalData.WalletAddress) == "" {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	payload.Network = u.network(payload.Network)

	remoteURL := joinURL(u.Endpoints.RemoteBase(payload.Network), "user-data/")
	u.Logger.Info("📤 [USER-DATA] Sending user data",
		zap.String("wallet", payload.PersonalData.WalletAddress),
		zap.String("network", string(payload.Network)),
		zap.String("url", remoteURL))

	body, remoteErr := u.upstream.call(ctx, "user-data", http.MethodPost, remoteURL, payload)
	if remoteErr == nil {
		return u.handleReply(ctx, payload.Network, body, "remote")
	}

	u.Logger.Warn("⚠️ [USER-DATA] API request failed, falling back to local endpoint", zap.Error(remoteErr))
	u.upstream.metrics.fallback("user-data")

	localURL := joinURL(u.Endpoints.LocalAPIURL, "api/user-data/")
	body, localErr := u.upstream.call(ctx, "local-user-data", http.MethodPost, localURL, payload)
	if localErr != nil {
		u.Logger.Error("❌ [USER-DATA] All API attempts failed", zap.Error(localErr))
		return nil, &SendFailedError{Remote: remoteErr, Local: localErr}
	}
	return u.handleReply(ctx, payload.Network, body, "local")
}

func (u *UserDataClient) handleReply(ctx context.Context, network models.Network, body []byte, via string) (*SendResult, error) {
	result := &SendResult{Via: via, Response: asJSON(body)}

	data, ok := delegationRequest(body)
	if !ok {
		return result, nil
	}
	if u.Flow == nil {
		return nil, &ValidationError{Message: "Delegation confirmation is not available"}
	}

	delegation, err := u.Flow.Run(ctx, network, data)
	if err != nil {
		return nil, err
	}
	result.Delegation = delegation
	return result, nil
}

// delegationRequest reports whether a user-data reply asks for delegation.
// Only requestId decides that; it may be a string or a number. The other
// fields are read as text whatever their JSON type.
func delegationRequest(body []byte) (models.DelegationConfirmationData, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.DelegationConfirmationData{}, false
	}

	var requestID string
	var num json.Number
	if err := json.Unmarshal(fields["requestId"], &requestID); err != nil {
		if err := json.Unmarshal(fields["requestId"], &num); err != nil {
			return models.DelegationConfirmationData{}, false
		}
		requestID = num.String()
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return models.DelegationConfirmationData{}, false
	}

	return models.DelegationConfirmationData{
		RequestID:            requestID,
		UserWalletAddress:    blobText(fields["userWalletAddress"]),
		UserTokenBalance:     blobText(fields["userTokenBalance"]),
		Token:                blobText(fields["token"]),
		BackendPublicAddress: blobText(fields["backendPublicAddress"]),
	}, true
}

// PostDashboardUserData is POST /api/dashboard/user-data.
func (u *UserDataClient) PostDashboardUserData(c *fiber.Ctx) error {
	var payload UserDataPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}
	if payload.Network != "" {
		n, err := models.ParseNetwork(string(payload.Network))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		payload.Network = n
	}

	result, err := u.SendUserData(c.UserContext(), payload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetDashboardWalletData is GET /api/dashboard/wallet-data?address=&network=.
func (u *UserDataClient) GetDashboardWalletData(c *fiber.Ctx) error {
	address := strings.TrimSpace(c.Query("address"))
	if address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Wallet address is required"})
	}
	var network models.Network
	if q := c.Query("network"); q != "" {
		n, err := models.ParseNetwork(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		network = n
	}
	return c.JSON(u.GetWalletData(c.UserContext(), address, network))
}
