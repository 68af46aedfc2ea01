// services/errors.go
package services

import (
	"errors"
	"fmt"
	"net/http"

	"web3-dashboard/chain"
)

// ValidationError is a malformed request (400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError is a missing resource (404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// UpstreamError is a non-2xx reply from a remote API. Its status and body
// are passed through to our caller.
type UpstreamError struct {
	URL    string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Status)
}

// ConnectivityError means the remote host could not be reached at all.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// SendFailedError is returned when both the remote and the local user-data
// hops failed.
type SendFailedError struct {
	Remote error
	Local  error
}

func (e *SendFailedError) Error() string {
	return fmt.Sprintf("failed to send user data: remote: %v; local: %v", e.Remote, e.Local)
}

func (e *SendFailedError) Unwrap() []error { return []error{e.Remote, e.Local} }

// ConfirmFailedError is returned when a delegation decision could not be
// relayed through either hop.
type ConfirmFailedError struct {
	Remote error
	Local  error
}

func (e *ConfirmFailedError) Error() string {
	return fmt.Sprintf("failed to confirm delegation: remote: %v; local: %v", e.Remote, e.Local)
}

func (e *ConfirmFailedError) Unwrap() []error { return []error{e.Remote, e.Local} }

// HTTPStatus maps err to the status code and message the API answers with.
// details is empty when the cause must not leak.
func HTTPStatus(err error) (status int, message string, details string) {
	var (
		validation   *ValidationError
		notFound     *NotFoundError
		upstream     *UpstreamError
		connectivity *ConnectivityError
		sendFailed   *SendFailedError
		confirm      *ConfirmFailedError
		conflict     *ConflictError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message, ""
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Message, ""
	case errors.As(err, &conflict):
		return http.StatusConflict, conflict.Message, ""
	case errors.Is(err, ErrUnsupportedChain), errors.Is(err, ErrNotConnected), errors.Is(err, chain.ErrNoProvider):
		return http.StatusConflict, err.Error(), ""
	case errors.As(err, &sendFailed):
		return http.StatusBadGateway, "Failed to send user data", sendFailed.Error()
	case errors.As(err, &confirm):
		return http.StatusBadGateway, "Failed to confirm delegation", confirm.Error()
	case errors.As(err, &upstream):
		return upstream.Status, "External API error", upstream.Body
	case errors.As(err, &connectivity):
		return http.StatusBadGateway, "Failed to connect to external API", connectivity.Err.Error()
	}
	return http.StatusInternalServerError, "Internal server error", ""
}

// ConflictError is a request that races an earlier one (409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
