// services/upstream.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"web3-dashboard/utils"
)

// upstream performs JSON calls with a per-call timeout and classifies
// failures into ConnectivityError and UpstreamError.
type upstream struct {
	client  *http.Client
	timeout time.Duration
	metrics *Metrics
}

func newUpstream(client *http.Client, timeout time.Duration, metrics *Metrics) *upstream {
	if client == nil {
		client = utils.HTTPClient
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &upstream{client: client, timeout: timeout, metrics: metrics}
}

// call returns the body of a 2xx reply.
func (u *upstream) call(ctx context.Context, target, method, url string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := utils.DoJSON(ctx, u.client, method, url, payload)
	if err != nil {
		u.metrics.upstream(target, "unreachable")
		return nil, &ConnectivityError{URL: url, Err: err}
	}
	if !resp.OK() {
		u.metrics.upstream(target, "error")
		return nil, &UpstreamError{URL: url, Status: resp.Status, Body: string(resp.Body)}
	}
	u.metrics.upstream(target, "ok")
	return resp.Body, nil
}

// asJSON returns body when it is valid JSON, otherwise {"text": body}.
func asJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return body
	}
	wrapped, _ := json.Marshal(map[string]string{"text": string(body)})
	return wrapped
}
