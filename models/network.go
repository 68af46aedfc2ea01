// models/network.go
package models

import (
	"fmt"
	"math/big"
	"strings"
)

// Network is one of the two supported blockchain environments.
type Network string

const (
	NetworkSepolia Network = "sepolia"
	NetworkSaga    Network = "saga"
)

// DefaultNetwork is used whenever no selection has been persisted.
const DefaultNetwork = NetworkSepolia

var (
	SepoliaChainID = big.NewInt(11155111)
	SagaChainID    = new(big.Int).SetUint64(2744440729579000)
)

// ParseNetwork accepts "sepolia" or "saga" (case-insensitive).
func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case NetworkSepolia:
		return NetworkSepolia, nil
	case NetworkSaga:
		return NetworkSaga, nil
	}
	return "", fmt.Errorf("unsupported network %q", s)
}

// NetworkOrDefault falls back to DefaultNetwork for empty or unknown input.
func NetworkOrDefault(s string) Network {
	if n, err := ParseNetwork(s); err == nil {
		return n
	}
	return DefaultNetwork
}

// NetworkForChainID maps a chain id to its network. ok is false for unknown chains.
func NetworkForChainID(chainID *big.Int) (Network, bool) {
	if chainID == nil {
		return "", false
	}
	switch {
	case chainID.Cmp(SepoliaChainID) == 0:
		return NetworkSepolia, true
	case chainID.Cmp(SagaChainID) == 0:
		return NetworkSaga, true
	}
	return "", false
}

// Toggle returns the other supported network.
func (n Network) Toggle() Network {
	if n == NetworkSaga {
		return NetworkSepolia
	}
	return NetworkSaga
}

// DisplayName is the label shown in the dashboard.
func (n Network) DisplayName() string {
	if n == NetworkSaga {
		return "testagp_SAGA"
	}
	return "Sepolia Testnet"
}
