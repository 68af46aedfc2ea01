// chain/provider.go
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Provider is the wallet provider the dashboard talks to. It mirrors the
// subset of EIP-1193 requests the dashboard needs; signing happens on the
// provider side.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// ErrNoProvider is returned when no provider endpoint is configured.
var ErrNoProvider = errors.New("wallet provider is not configured")

// RPCProvider implements Provider over Ethereum JSON-RPC.
type RPCProvider struct {
	rpc          *rpc.Client
	client       *ethclient.Client
	logger       *zap.Logger
	pollInterval time.Duration
}

// DialProvider connects to the JSON-RPC endpoint at rpcURL.
func DialProvider(ctx context.Context, rpcURL string, logger *zap.Logger) (*RPCProvider, error) {
	if rpcURL == "" {
		return nil, ErrNoProvider
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wallet provider: %w", err)
	}

	p := &RPCProvider{
		rpc:          rpcClient,
		client:       ethclient.NewClient(rpcClient),
		logger:       logger,
		pollInterval: 2 * time.Second,
	}

	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	logger.Info("Wallet provider initialized",
		zap.String("rpc", rpcURL),
		zap.String("chain_id", chainID.String()))

	return p, nil
}

// Close releases the underlying connection.
func (p *RPCProvider) Close() {
	p.rpc.Close()
}

// RequestAccounts asks the provider to expose its accounts. Nodes that do
// not implement eth_requestAccounts are treated like eth_accounts.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		p.logger.Debug("eth_requestAccounts unavailable, using eth_accounts", zap.Error(err))
		return p.Accounts(ctx)
	}
	return accounts, nil
}

func (p *RPCProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts failed: %w", err)
	}
	return accounts, nil
}

func (p *RPCProvider) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := p.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return chainID, nil
}

func (p *RPCProvider) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		To:   &to,
		Data: data,
	}
	result, err := p.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}
	return result, nil
}

// SendTransaction submits a contract call signed by the provider's account.
func (p *RPCProvider) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	args := map[string]any{
		"from": from,
		"to":   to,
		"data": hexutil.Bytes(data),
	}

	var hash common.Hash
	if err := p.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	p.logger.Info("Transaction sent",
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("tx_hash", hash.Hex()))
	return hash, nil
}

// WaitMined polls for the receipt of hash until it is mined or ctx ends.
func (p *RPCProvider) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := p.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
