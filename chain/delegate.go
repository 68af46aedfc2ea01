// chain/delegate.go
package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const delegateABI = `[
	{
		"inputs": [{"name": "delegateAddress", "type": "address"}],
		"name": "authorizeDelegate",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

var delegation = mustParseABI(delegateABI)

// AuthorizeDelegateData packs authorizeDelegate(delegate).
func AuthorizeDelegateData(delegate common.Address) ([]byte, error) {
	data, err := delegation.Pack("authorizeDelegate", delegate)
	if err != nil {
		return nil, fmt.Errorf("failed to pack authorizeDelegate: %w", err)
	}
	return data, nil
}
