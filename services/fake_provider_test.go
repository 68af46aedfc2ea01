package services

import (
	"context"
	"math/big"
	"sync"

	"web3-dashboard/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
)

type sentTx struct {
	from, to common.Address
	data     []byte
}

// fakeProvider is an in-memory wallet provider. Token calls are answered by
// 4-byte selector: balanceOf returns balance, decimals returns decimals.
type fakeProvider struct {
	mu         sync.Mutex
	accounts   []common.Address
	chainID    *big.Int
	balance    *big.Int
	decimals   int64
	requestErr error
	sendErr    error
	reverted   bool
	sent       []sentTx
	balanceHit int
}

func newFakeProvider(account string, chainID *big.Int) *fakeProvider {
	return &fakeProvider{
		accounts: []common.Address{common.HexToAddress(account)},
		chainID:  chainID,
		balance:  big.NewInt(0),
		decimals: 18,
	}
}

func (p *fakeProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	return append([]common.Address(nil), p.accounts...), nil
}

func (p *fakeProvider) Accounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]common.Address(nil), p.accounts...), nil
}

func (p *fakeProvider) ChainID(context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.chainID), nil
}

func (p *fakeProvider) CallContract(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch common.Bytes2Hex(data[:4]) {
	case "70a08231":
		p.balanceHit++
		return math.U256Bytes(new(big.Int).Set(p.balance)), nil
	case "313ce567":
		return math.U256Bytes(big.NewInt(p.decimals)), nil
	}
	return nil, nil
}

func (p *fakeProvider) SendTransaction(_ context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return common.Hash{}, p.sendErr
	}
	p.sent = append(p.sent, sentTx{from: from, to: to, data: data})
	return common.BigToHash(big.NewInt(int64(len(p.sent)))), nil
}

func (p *fakeProvider) WaitMined(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := types.ReceiptStatusSuccessful
	if p.reverted {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, TxHash: hash, BlockNumber: big.NewInt(42)}, nil
}

func (p *fakeProvider) set(fn func(p *fakeProvider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakeProvider) sentTxs() []sentTx {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sentTx(nil), p.sent...)
}

// staticLoader answers GetWalletData with fixed personal data per network.
type staticLoader struct {
	mu    sync.Mutex
	data  map[models.Network]string
	calls int
}

func (l *staticLoader) GetWalletData(_ context.Context, _ string, network models.Network) WalletDataResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return WalletDataResult{PersonalData: l.data[network]}
}
