package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSONPropagatesRequestID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-123", r.Header.Get(RequestIDHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"hello":"world"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	ctx := WithRequestID(context.Background(), "req-123")
	resp, err := DoJSON(ctx, server.Client(), http.MethodPost, server.URL, map[string]string{"hello": "world"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestDoJSONReturnsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Length"))
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := DoJSON(context.Background(), nil, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "nope\n", string(resp.Body))
}

func TestDoJSONUnreachable(t *testing.T) {
	_, err := DoJSON(context.Background(), nil, http.MethodGet, "http://127.0.0.1:1", nil)
	assert.Error(t, err)
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	id := RequestID(context.Background())
	assert.Len(t, id, 36)
	assert.Equal(t, context.Background(), WithRequestID(context.Background(), ""))
}
