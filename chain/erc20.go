// chain/erc20.go
package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ERC-20 ABI for balanceOf, transfer, decimals and symbol
const erc20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "_owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "balance", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_to", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "decimals",
		"outputs": [{"name": "", "type": "uint8"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "symbol",
		"outputs": [{"name": "", "type": "string"}],
		"type": "function"
	}
]`

// DefaultDecimals is assumed when a token does not answer decimals().
const DefaultDecimals uint8 = 18

var erc20 = mustParseABI(erc20ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

// TokenBalance returns balanceOf(owner) on token.
func TokenBalance(ctx context.Context, p Provider, token, owner common.Address) (*big.Int, error) {
	data, err := erc20.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf: %w", err)
	}

	result, err := p.CallContract(ctx, token, data)
	if err != nil {
		return nil, err
	}
	// empty result: the address never interacted with the token
	if len(result) == 0 {
		return big.NewInt(0), nil
	}

	var balance *big.Int
	if err := erc20.UnpackIntoInterface(&balance, "balanceOf", result); err != nil {
		return nil, fmt.Errorf("failed to unpack balance: %w", err)
	}
	if balance == nil {
		balance = big.NewInt(0)
	}
	return balance, nil
}

// TokenDecimals returns decimals() on token, or DefaultDecimals when the
// call fails.
func TokenDecimals(ctx context.Context, p Provider, token common.Address) (uint8, error) {
	data, err := erc20.Pack("decimals")
	if err != nil {
		return DefaultDecimals, fmt.Errorf("failed to pack decimals: %w", err)
	}
	result, err := p.CallContract(ctx, token, data)
	if err != nil || len(result) == 0 {
		return DefaultDecimals, err
	}

	var decimals uint8
	if err := erc20.UnpackIntoInterface(&decimals, "decimals", result); err != nil {
		return DefaultDecimals, fmt.Errorf("failed to unpack decimals: %w", err)
	}
	return decimals, nil
}

// TransferData packs transfer(to, amount).
func TransferData(to common.Address, amount *big.Int) ([]byte, error) {
	data, err := erc20.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}
	return data, nil
}
