// models/delegation.go
package models

import "time"

// DelegationConfirmationData is produced by the remote API when a request
// needs the user's consent to delegate work to a backend address.
type DelegationConfirmationData struct {
	RequestID            string `json:"requestId"`
	UserWalletAddress    string `json:"userWalletAddress"`
	UserTokenBalance     string `json:"userTokenBalance"`
	Token                string `json:"token"`
	BackendPublicAddress string `json:"backendPublicAddress"`
}

// DelegationState tracks one confirmation through the flow.
type DelegationState string

const (
	DelegationRequested DelegationState = "requested"
	DelegationPresented DelegationState = "presented"
	DelegationConfirmed DelegationState = "confirmed"
	DelegationDeclined  DelegationState = "declined"
	DelegationFinalized DelegationState = "finalized"
)

// DelegationPrompt is what the dashboard shows the user.
type DelegationPrompt struct {
	RequestID                 string          `json:"requestId"`
	Network                   Network         `json:"network"`
	WalletAddress             string          `json:"walletAddress"`
	WalletAddressShort        string          `json:"walletAddressShort"`
	TokenBalance              string          `json:"tokenBalance"`
	Token                     string          `json:"token"`
	BackendPublicAddress      string          `json:"backendPublicAddress"`
	BackendPublicAddressShort string          `json:"backendPublicAddressShort"`
	Message                   string          `json:"message"`
	State                     DelegationState `json:"state"`
	PresentedAt               time.Time       `json:"presentedAt"`
	ExpiresAt                 time.Time       `json:"expiresAt"`
}
