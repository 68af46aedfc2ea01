package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProxyApp(t *testing.T, endpoints Endpoints) (*fiber.App, *GormWalletStore) {
	t.Helper()
	store := NewWalletStore(newTestDB(t))
	svc := NewProxyService(store, endpoints, nil, time.Second, nil, zap.NewNop())

	app := fiber.New()
	app.Post("/api/user-data", svc.PostUserData)
	app.Get("/api/user-data", svc.GetUserData)
	app.Post("/api/confirm-delegation", svc.ConfirmDelegation)
	app.Post("/api/custom", svc.SubmitKeys)
	return app, store
}

func TestProxyUserDataLocalMode(t *testing.T) {
	app, store := newProxyApp(t, Endpoints{})

	status, body := doJSON(t, app, http.MethodPost, "/api/user-data",
		`{"personalData":{"walletAddress":"0xABC","about":"gm"},"network":"saga"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "gpt-3.5-turbo", body["agentModel"])

	wallet, err := store.Get(context.Background(), "0xabc")
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.JSONEq(t, `{"walletAddress":"0xABC","about":"gm"}`, wallet.PersonalData)

	status, body = doJSON(t, app, http.MethodGet, "/api/user-data?walletAddress=0xabc", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, wallet.PersonalData, body["personalData"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/user-data?walletAddress=0xother", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProxyUserDataRequiresWalletAddress(t *testing.T) {
	app, _ := newProxyApp(t, Endpoints{})

	status, body := doJSON(t, app, http.MethodPost, "/api/user-data", `{"personalData":{"about":"gm"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required fields", body["error"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/user-data", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProxyUserDataForwardsToNetworkUpstream(t *testing.T) {
	var got map[string]any
	saga := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user-data/", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"requestId":"req-1"}`))
	}))
	defer saga.Close()

	app, _ := newProxyApp(t, Endpoints{
		UseExternalAPI:     true,
		SepoliaExternalURL: "http://127.0.0.1:1",
		SagaExternalURL:    saga.URL,
		BackendURL:         "http://backend.local",
	})

	status, body := doJSON(t, app, http.MethodPost, "/api/user-data",
		`{"personalData":{"walletAddress":"0xabc"},"network":"saga"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "req-1", body["requestId"])
	assert.Equal(t, "http://backend.local", got["backendUrl"])
}

func TestProxyPassesUpstreamStatusThrough(t *testing.T) {
	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer external.Close()

	app, _ := newProxyApp(t, Endpoints{UseExternalAPI: true, SepoliaExternalURL: external.URL})

	status, body := doJSON(t, app, http.MethodPost, "/api/user-data", `{"personalData":{"walletAddress":"0xabc"}}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "External API returned 429", body["error"])
	assert.Contains(t, body["details"], "quota exceeded")
}

func TestProxyUnreachableUpstreamIs502(t *testing.T) {
	app, _ := newProxyApp(t, Endpoints{UseExternalAPI: true, SepoliaExternalURL: "http://127.0.0.1:1"})

	status, body := doJSON(t, app, http.MethodGet, "/api/user-data?walletAddress=0xabc", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "Failed to connect to external API", body["error"])
}

func TestProxyConfirmDelegation(t *testing.T) {
	var forwarded map[string]any
	external := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &forwarded))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer external.Close()

	app, _ := newProxyApp(t, Endpoints{UseExternalAPI: true, SepoliaExternalURL: external.URL})

	status, _ := doJSON(t, app, http.MethodPost, "/api/confirm-delegation", `{"confirmed":true}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/confirm-delegation", `{"request_id":"r1","confirmed":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing or invalid confirmed field", body["error"])

	status, body = doJSON(t, app, http.MethodPost, "/api/confirm-delegation",
		`{"request_id":"r1","confirmed":false,"network":"sepolia","extra":1}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, map[string]any{"request_id": "r1", "confirmed": false}, forwarded)
}

func TestProxyConfirmDelegationLocalMode(t *testing.T) {
	app, _ := newProxyApp(t, Endpoints{})

	status, body := doJSON(t, app, http.MethodPost, "/api/confirm-delegation", `{"request_id":"r1","confirmed":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Delegation confirmed successfully", body["message"])
	assert.Equal(t, "sepolia", body["network"])
}

func TestSubmitKeys(t *testing.T) {
	app, _ := newProxyApp(t, Endpoints{})

	status, _ := doJSON(t, app, http.MethodPost, "/api/custom", `{"publicKey":"pk"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/custom", `{"publicKey":"pk","secretKey":"sk","apiKey":"ak"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "processed", body["data"].(map[string]any)["status"])
}
