// services/delegation_flow.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"web3-dashboard/models"

	"go.uber.org/zap"
)

// DelegationResult is what the dashboard gets back once a delegation
// request has been decided and relayed.
type DelegationResult struct {
	RequestID          string                 `json:"requestId"`
	Confirmed          bool                   `json:"confirmed"`
	State              models.DelegationState `json:"state"`
	Via                string                 `json:"via"`
	Response           json.RawMessage        `json:"response,omitempty"`
	Authorized         bool                   `json:"authorized"`
	TxHash             string                 `json:"txHash,omitempty"`
	AuthorizationError string                 `json:"authorizationError,omitempty"`
}

// DelegationFlow drives one delegation request: ask the user, relay the
// answer, then authorize the backend on-chain when the user agreed.
type DelegationFlow struct {
	Confirmer  Confirmer
	Authorizer Authorizer
	Endpoints  Endpoints
	Logger     *zap.Logger

	upstream *upstream
}

func NewDelegationFlow(confirmer Confirmer, authorizer Authorizer, endpoints Endpoints, client *http.Client, timeout time.Duration, metrics *Metrics, logger *zap.Logger) *DelegationFlow {
	return &DelegationFlow{
		Confirmer:  confirmer,
		Authorizer: authorizer,
		Endpoints:  endpoints,
		Logger:     logger,
		upstream:   newUpstream(client, timeout, metrics),
	}
}

// Run executes the flow for data on network.
func (f *DelegationFlow) Run(ctx context.Context, network models.Network, data models.DelegationConfirmationData) (*DelegationResult, error) {
	f.Logger.Info("🤝 [DELEGATION] Handling delegation confirmation",
		zap.String("request_id", data.RequestID),
		zap.String("network", string(network)))

	confirmed, err := f.Confirmer.Confirm(ctx, network, data)
	if err != nil {
		return nil, err
	}

	result := &DelegationResult{
		RequestID: data.RequestID,
		Confirmed: confirmed,
		State:     models.DelegationDeclined,
	}
	if confirmed {
		result.State = models.DelegationConfirmed
	}

	result.Response, result.Via, err = f.relay(ctx, network, data.RequestID, confirmed)
	if err != nil {
		return nil, err
	}

	if confirmed && f.Authorizer != nil {
		hash, err := f.Authorizer.Authorize(ctx, data.BackendPublicAddress)
		if err != nil {
			f.Logger.Error("❌ [DELEGATION] Error authorizing delegate",
				zap.String("request_id", data.RequestID), zap.Error(err))
			result.AuthorizationError = err.Error()
		} else {
			result.Authorized = true
			result.TxHash = hash.Hex()
		}
	}

	result.State = models.DelegationFinalized
	return result, nil
}

// relay sends {request_id, confirmed} to the remote API, then to the local
// route (which also receives the network).
func (f *DelegationFlow) relay(ctx context.Context, network models.Network, requestID string, confirmed bool) (json.RawMessage, string, error) {
	remoteURL := joinURL(f.Endpoints.RemoteBase(network), "confirm-delegation/")
	body, remoteErr := f.upstream.call(ctx, "confirm-delegation", http.MethodPost, remoteURL, map[string]any{
		"request_id": requestID,
		"confirmed":  confirmed,
	})
	if remoteErr == nil {
		return asJSON(body), "remote", nil
	}

	f.Logger.Warn("⚠️ [DELEGATION] Confirmation API failed, falling back to local endpoint",
		zap.String("request_id", requestID), zap.Error(remoteErr))
	f.upstream.metrics.fallback("confirm-delegation")

	localURL := joinURL(f.Endpoints.LocalAPIURL, "api/confirm-delegation/")
	body, localErr := f.upstream.call(ctx, "local-confirm-delegation", http.MethodPost, localURL, map[string]any{
		"request_id": requestID,
		"confirmed":  confirmed,
		"network":    network,
	})
	if localErr != nil {
		f.Logger.Error("❌ [DELEGATION] All confirmation API attempts failed",
			zap.String("request_id", requestID), zap.Error(localErr))
		return nil, "", &ConfirmFailedError{Remote: remoteErr, Local: localErr}
	}
	return asJSON(body), "local", nil
}
