// services/wallet_manager.go
package services

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"web3-dashboard/chain"
	"web3-dashboard/models"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ConnectionState of the wallet manager.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// ErrNoAccounts is returned when the provider exposes no account.
var ErrNoAccounts = errors.New("no accounts returned by wallet provider")

// errSuperseded marks a result that arrived after a newer connect,
// disconnect or network change.
var errSuperseded = errors.New("wallet request superseded by a newer one")

// PersonalDataLoader fetches the stored personal data for an address.
type PersonalDataLoader interface {
	GetWalletData(ctx context.Context, address string, network models.Network) WalletDataResult
}

// WalletStatus is a snapshot of the manager's state.
type WalletStatus struct {
	State             ConnectionState `json:"state"`
	Address           string          `json:"address,omitempty"`
	ChainID           string          `json:"chainId,omitempty"`
	Network           models.Network  `json:"network"`
	NetworkName       string          `json:"networkName"`
	UnsupportedChain  bool            `json:"unsupportedChain"`
	ChainMismatch     bool            `json:"chainMismatch"`
	TokenBalance      string          `json:"tokenBalance"`
	TokenBalanceExact string          `json:"tokenBalanceExact"`
	TokenSymbol       string          `json:"tokenSymbol"`
	BalanceUpdatedAt  *time.Time      `json:"balanceUpdatedAt,omitempty"`
	PersonalData      string          `json:"personalData"`
}

// WalletManager tracks the connected account, its chain, the selected
// network and the token balance. Every connect, disconnect or network
// change bumps a generation counter; results computed under an older
// generation are discarded.
type WalletManager struct {
	Provider chain.Provider
	Settings *SettingsStore
	Loader   PersonalDataLoader
	Logger   *zap.Logger

	token       common.Address
	hasToken    bool
	tokenSymbol string

	mu               sync.Mutex
	generation       uint64
	state            ConnectionState
	address          common.Address
	chainID          *big.Int
	network          models.Network
	unsupportedChain bool
	decimals         uint8
	hasDecimals      bool
	balance          *big.Int
	balanceAt        *time.Time
	personalData     string
}

// NewWalletManager restores the persisted network selection. provider may
// be nil when no wallet endpoint is configured.
func NewWalletManager(ctx context.Context, provider chain.Provider, settings *SettingsStore, tokenAddress, tokenSymbol string, logger *zap.Logger) (*WalletManager, error) {
	m := &WalletManager{
		Provider:    provider,
		Settings:    settings,
		Logger:      logger,
		tokenSymbol: tokenSymbol,
		state:       StateDisconnected,
		network:     models.DefaultNetwork,
	}
	if tokenAddress != "" {
		if err := chain.ValidateAddress(tokenAddress); err != nil {
			return nil, err
		}
		m.token = common.HexToAddress(tokenAddress)
		m.hasToken = true
	}
	if settings != nil {
		network, err := settings.Network(ctx)
		if err != nil {
			logger.Warn("⚠️ [WALLET] Could not load saved network, using default", zap.Error(err))
		}
		m.network = network
	}
	return m, nil
}

// Network returns the selected network.
func (m *WalletManager) Network() models.Network {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.network
}

func (m *WalletManager) Status() WalletStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *WalletManager) statusLocked() WalletStatus {
	st := WalletStatus{
		State:            m.state,
		Network:          m.network,
		NetworkName:      m.network.DisplayName(),
		UnsupportedChain: m.unsupportedChain,
		TokenSymbol:      m.tokenSymbol,
		TokenBalance:     "0",
		PersonalData:     m.personalData,
	}
	if m.state != StateConnected {
		return st
	}

	st.Address = m.address.Hex()
	if m.chainID != nil {
		st.ChainID = m.chainID.String()
		if n, ok := models.NetworkForChainID(m.chainID); ok && n != m.network {
			st.ChainMismatch = true
		}
	}
	decimals := m.decimals
	if !m.hasDecimals {
		decimals = chain.DefaultDecimals
	}
	if m.balance != nil {
		st.TokenBalance = chain.WholeUnits(m.balance, decimals)
		st.TokenBalanceExact = chain.FormatUnits(m.balance, decimals)
		st.BalanceUpdatedAt = m.balanceAt
	}
	return st
}

// Connect requests accounts from the provider and enters Connected. A
// provider on an unknown chain is refused and the manager returns to
// Disconnected.
func (m *WalletManager) Connect(ctx context.Context) (WalletStatus, error) {
	if m.Provider == nil {
		return m.Status(), chain.ErrNoProvider
	}

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.state = StateConnecting
	m.mu.Unlock()

	accounts, err := m.Provider.RequestAccounts(ctx)
	if err != nil {
		m.failConnect(gen)
		return m.Status(), err
	}
	if len(accounts) == 0 {
		m.failConnect(gen)
		return m.Status(), ErrNoAccounts
	}

	chainID, err := m.Provider.ChainID(ctx)
	if err != nil {
		m.failConnect(gen)
		return m.Status(), err
	}
	network, ok := models.NetworkForChainID(chainID)
	if !ok {
		m.failConnect(gen)
		m.Logger.Warn("🚫 [WALLET] Connect refused on unsupported chain", zap.String("chain_id", chainID.String()))
		return m.Status(), ErrUnsupportedChain
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return m.Status(), errSuperseded
	}
	m.state = StateConnected
	m.address = accounts[0]
	m.chainID = chainID
	m.network = network
	m.unsupportedChain = false
	m.balance = nil
	m.balanceAt = nil
	m.personalData = ""
	m.mu.Unlock()

	m.Logger.Info("🔗 [WALLET] Connected",
		zap.String("address", accounts[0].Hex()),
		zap.String("network", string(network)))

	m.persistNetwork(ctx, network)
	if err := m.RefreshBalance(ctx); err != nil {
		m.Logger.Warn("⚠️ [WALLET] Balance refresh failed", zap.Error(err))
	}
	m.loadPersonalData(ctx, gen, accounts[0], network)

	return m.Status(), nil
}

func (m *WalletManager) failConnect(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		m.state = StateDisconnected
	}
}

// Disconnect clears the session. The network selection is kept.
func (m *WalletManager) Disconnect() WalletStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.state = StateDisconnected
	m.address = common.Address{}
	m.chainID = nil
	m.unsupportedChain = false
	m.balance = nil
	m.balanceAt = nil
	m.personalData = ""

	m.Logger.Info("🔌 [WALLET] Disconnected")
	return m.statusLocked()
}

// SelectNetwork changes the selection, persists it and reloads the
// network-dependent data when connected.
func (m *WalletManager) SelectNetwork(ctx context.Context, network models.Network) (WalletStatus, error) {
	if _, err := models.ParseNetwork(string(network)); err != nil {
		return m.Status(), &ValidationError{Message: err.Error()}
	}

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.network = network
	connected := m.state == StateConnected
	address := m.address
	m.mu.Unlock()

	m.Logger.Info("🔀 [WALLET] Network selected", zap.String("network", string(network)))
	m.persistNetwork(ctx, network)

	if connected {
		if err := m.RefreshBalance(ctx); err != nil {
			m.Logger.Warn("⚠️ [WALLET] Balance refresh failed", zap.Error(err))
		}
		m.loadPersonalData(ctx, gen, address, network)
	}
	return m.Status(), nil
}

// ToggleNetwork switches between Sepolia and Saga.
func (m *WalletManager) ToggleNetwork(ctx context.Context) (WalletStatus, error) {
	return m.SelectNetwork(ctx, m.Network().Toggle())
}

// HandleAccountsChanged reacts to the provider's account list. No
// accounts means the user disconnected.
func (m *WalletManager) HandleAccountsChanged(ctx context.Context, accounts []common.Address) {
	if len(accounts) == 0 {
		m.mu.Lock()
		connected := m.state == StateConnected
		m.mu.Unlock()
		if connected {
			m.Disconnect()
		}
		return
	}

	m.mu.Lock()
	if m.state != StateConnected || m.address == accounts[0] {
		m.mu.Unlock()
		return
	}
	m.generation++
	gen := m.generation
	m.address = accounts[0]
	m.balance = nil
	m.balanceAt = nil
	m.personalData = ""
	network := m.network
	m.mu.Unlock()

	m.Logger.Info("👤 [WALLET] Account changed", zap.String("address", accounts[0].Hex()))
	if err := m.RefreshBalance(ctx); err != nil {
		m.Logger.Warn("⚠️ [WALLET] Balance refresh failed", zap.Error(err))
	}
	m.loadPersonalData(ctx, gen, accounts[0], network)
}

// HandleChainChanged re-derives the network from chainID and reloads the
// network's personal data. An unknown chain keeps the current selection
// and flags the session as unsupported.
func (m *WalletManager) HandleChainChanged(ctx context.Context, chainID *big.Int) {
	m.mu.Lock()
	if m.state != StateConnected || chainID == nil || (m.chainID != nil && m.chainID.Cmp(chainID) == 0) {
		m.mu.Unlock()
		return
	}
	m.generation++
	gen := m.generation
	address := m.address
	m.chainID = new(big.Int).Set(chainID)
	network, ok := models.NetworkForChainID(chainID)
	changed := ok && network != m.network
	if ok {
		m.network = network
		m.unsupportedChain = false
	} else {
		m.unsupportedChain = true
	}
	if changed {
		m.personalData = ""
	}
	m.balance = nil
	m.balanceAt = nil
	m.mu.Unlock()

	if !ok {
		m.Logger.Warn("🚫 [WALLET] Provider switched to unsupported chain", zap.String("chain_id", chainID.String()))
		return
	}
	m.Logger.Info("⛓️ [WALLET] Chain changed", zap.String("network", string(network)))
	if changed {
		m.persistNetwork(ctx, network)
	}
	if err := m.RefreshBalance(ctx); err != nil {
		m.Logger.Warn("⚠️ [WALLET] Balance refresh failed", zap.Error(err))
	}
	m.loadPersonalData(ctx, gen, address, network)
}

// RefreshBalance reads the token balance of the connected account. On
// failure the previous balance is kept.
func (m *WalletManager) RefreshBalance(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateConnected || !m.hasToken || m.Provider == nil || m.unsupportedChain {
		m.mu.Unlock()
		return nil
	}
	gen := m.generation
	address := m.address
	needDecimals := !m.hasDecimals
	m.mu.Unlock()

	var decimals uint8
	if needDecimals {
		d, err := chain.TokenDecimals(ctx, m.Provider, m.token)
		if err != nil {
			m.Logger.Debug("[WALLET] decimals() unavailable, assuming 18", zap.Error(err))
		}
		decimals = d
	}

	balance, err := chain.TokenBalance(ctx, m.Provider, m.token, address)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	if needDecimals && !m.hasDecimals {
		m.decimals = decimals
		m.hasDecimals = true
	}
	if m.generation != gen {
		return errSuperseded
	}
	m.balance = balance
	m.balanceAt = &now
	return nil
}

// Sync polls the provider once and applies any account or chain change.
func (m *WalletManager) Sync(ctx context.Context) error {
	m.mu.Lock()
	connected := m.state == StateConnected
	m.mu.Unlock()
	if !connected || m.Provider == nil {
		return nil
	}

	accounts, err := m.Provider.Accounts(ctx)
	if err != nil {
		return err
	}
	m.HandleAccountsChanged(ctx, accounts)
	if len(accounts) == 0 {
		return nil
	}

	chainID, err := m.Provider.ChainID(ctx)
	if err != nil {
		return err
	}
	m.HandleChainChanged(ctx, chainID)
	return m.RefreshBalance(ctx)
}

// TokenDecimals returns the token's decimals, reading them once.
func (m *WalletManager) TokenDecimals(ctx context.Context) uint8 {
	m.mu.Lock()
	if m.hasDecimals {
		d := m.decimals
		m.mu.Unlock()
		return d
	}
	m.mu.Unlock()
	if m.Provider == nil || !m.hasToken {
		return chain.DefaultDecimals
	}

	d, err := chain.TokenDecimals(ctx, m.Provider, m.token)
	if err != nil {
		return d
	}
	m.mu.Lock()
	m.decimals, m.hasDecimals = d, true
	m.mu.Unlock()
	return d
}

// Account returns the connected address.
func (m *WalletManager) Account() (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return common.Address{}, ErrNotConnected
	}
	return m.address, nil
}

func (m *WalletManager) persistNetwork(ctx context.Context, network models.Network) {
	if m.Settings == nil {
		return
	}
	if err := m.Settings.SetNetwork(ctx, network); err != nil {
		m.Logger.Warn("⚠️ [WALLET] Could not save network selection", zap.Error(err))
	}
}

// loadPersonalData fetches personal data and keeps it only if no newer
// request has started.
func (m *WalletManager) loadPersonalData(ctx context.Context, gen uint64, address common.Address, network models.Network) {
	if m.Loader == nil {
		return
	}
	res := m.Loader.GetWalletData(ctx, address.Hex(), network)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen {
		m.personalData = res.PersonalData
	}
}
