// models/personal_data.go
package models

import (
	"encoding/json"
	"strings"
)

// PersonalDataEnvelope is the JSON shape some writers store in Wallet.PersonalData.
type PersonalDataEnvelope struct {
	WalletAddress string `json:"walletAddress"`
	Data          string `json:"data"`
}

// PersonalData is the normalized view of a stored personal-data blob.
type PersonalData struct {
	WalletAddress string `json:"walletAddress,omitempty"`
	Data          string `json:"data"`
	Raw           string `json:"raw"`
	Enveloped     bool   `json:"enveloped"`
}

// NormalizePersonalData parses raw as a {walletAddress, data} envelope and
// falls back to treating the whole blob as the data.
func NormalizePersonalData(raw string) PersonalData {
	out := PersonalData{Data: raw, Raw: raw}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return out
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return out
	}
	dataField, ok := fields["data"]
	if !ok {
		return out
	}

	var data string
	if err := json.Unmarshal(dataField, &data); err != nil {
		// non-string data keeps its JSON text
		data = string(dataField)
	}
	out.Data = data
	out.Enveloped = true

	if addrField, ok := fields["walletAddress"]; ok {
		var addr string
		if json.Unmarshal(addrField, &addr) == nil {
			out.WalletAddress = addr
		}
	}
	return out
}

// EncodeEnvelope renders the envelope form stored by the user-data routes.
func EncodeEnvelope(walletAddress, data string) string {
	b, _ := json.Marshal(PersonalDataEnvelope{WalletAddress: walletAddress, Data: data})
	return string(b)
}
