// services/delegate_authorizer.go
package services

import (
	"context"
	"errors"
	"fmt"

	"web3-dashboard/chain"
	"web3-dashboard/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedChain means the provider is on neither Sepolia nor Saga.
	ErrUnsupportedChain = errors.New("unsupported network. Please connect to Sepolia or testagp_SAGA network")
	// ErrNotConnected means an operation needs a connected wallet.
	ErrNotConnected = errors.New("wallet is not connected")
)

// Authorizer grants a backend address delegate rights on-chain.
type Authorizer interface {
	Authorize(ctx context.Context, delegate string) (common.Hash, error)
}

// DelegateAuthorizer calls authorizeDelegate(address) on the contract of the
// network the provider is currently on.
type DelegateAuthorizer struct {
	Provider  chain.Provider
	Contracts map[models.Network]string
	Logger    *zap.Logger
}

// NewDelegateAuthorizer maps each network to its contract. An empty Saga
// address falls back to the Sepolia one.
func NewDelegateAuthorizer(provider chain.Provider, sepoliaContract, sagaContract string, logger *zap.Logger) *DelegateAuthorizer {
	if sagaContract == "" {
		sagaContract = sepoliaContract
	}
	return &DelegateAuthorizer{
		Provider: provider,
		Contracts: map[models.Network]string{
			models.NetworkSepolia: sepoliaContract,
			models.NetworkSaga:    sagaContract,
		},
		Logger: logger,
	}
}

func (a *DelegateAuthorizer) contractFor(network models.Network) (common.Address, error) {
	addr := a.Contracts[network]
	if addr == "" {
		return common.Address{}, fmt.Errorf("contract address not configured for %s network", network.DisplayName())
	}
	if err := chain.ValidateAddress(addr); err != nil {
		return common.Address{}, fmt.Errorf("contract address for %s: %w", network, err)
	}
	return common.HexToAddress(addr), nil
}

// Authorize sends authorizeDelegate(delegate) from the provider's first
// account and waits for the receipt.
func (a *DelegateAuthorizer) Authorize(ctx context.Context, delegate string) (common.Hash, error) {
	if a.Provider == nil {
		return common.Hash{}, chain.ErrNoProvider
	}
	if err := chain.ValidateAddress(delegate); err != nil {
		return common.Hash{}, &ValidationError{Message: "Invalid backend public address"}
	}

	chainID, err := a.Provider.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	network, ok := models.NetworkForChainID(chainID)
	if !ok {
		return common.Hash{}, ErrUnsupportedChain
	}
	contract, err := a.contractFor(network)
	if err != nil {
		return common.Hash{}, err
	}

	accounts, err := a.Provider.Accounts(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if len(accounts) == 0 {
		return common.Hash{}, ErrNotConnected
	}

	data, err := chain.AuthorizeDelegateData(common.HexToAddress(delegate))
	if err != nil {
		return common.Hash{}, err
	}

	a.Logger.Info("🔏 [DELEGATION] Authorizing delegate",
		zap.String("network", string(network)),
		zap.String("contract", contract.Hex()),
		zap.String("delegate", delegate))

	hash, err := a.Provider.SendTransaction(ctx, accounts[0], contract, data)
	if err != nil {
		return common.Hash{}, err
	}
	receipt, err := a.Provider.WaitMined(ctx, hash)
	if err != nil {
		return hash, fmt.Errorf("failed waiting for authorizeDelegate: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hash, fmt.Errorf("authorizeDelegate transaction %s reverted", hash.Hex())
	}

	a.Logger.Info("✅ [DELEGATION] Delegate authorized", zap.String("tx_hash", hash.Hex()))
	return hash, nil
}
