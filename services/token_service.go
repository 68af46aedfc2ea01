// services/token_service.go
package services

import (
	"context"
	"strings"
	"time"

	"web3-dashboard/chain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenService exposes the ERC-20 balance and transfer of the connected
// wallet.
type TokenService struct {
	Manager     *WalletManager
	Provider    chain.Provider
	Token       string
	Symbol      string
	Logger      *zap.Logger
	WaitTimeout time.Duration
}

func NewTokenService(manager *WalletManager, provider chain.Provider, token, symbol string, logger *zap.Logger) *TokenService {
	return &TokenService{
		Manager:     manager,
		Provider:    provider,
		Token:       token,
		Symbol:      symbol,
		Logger:      logger,
		WaitTimeout: 2 * time.Minute,
	}
}

func (s *TokenService) ready() (common.Address, error) {
	if s.Provider == nil {
		return common.Address{}, chain.ErrNoProvider
	}
	if s.Token == "" {
		return common.Address{}, &ValidationError{Message: "Token contract address is not configured"}
	}
	return s.Manager.Account()
}

// GetBalance is GET /api/tokens/balance.
func (s *TokenService) GetBalance(c *fiber.Ctx) error {
	account, err := s.ready()
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.UserContext()

	decimals := s.Manager.TokenDecimals(ctx)
	balance, err := chain.TokenBalance(ctx, s.Provider, common.HexToAddress(s.Token), account)
	if err != nil {
		s.Logger.Error("❌ [TOKENS] Error fetching balance", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to fetch token balance", "details": err.Error()})
	}

	return c.JSON(fiber.Map{
		"address":  account.Hex(),
		"token":    s.Token,
		"symbol":   s.Symbol,
		"decimals": decimals,
		"raw":      balance.String(),
		"balance":  chain.FormatUnits(balance, decimals),
	})
}

// TransferRequest is the body of POST /api/tokens/transfer.
type TransferRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// Transfer sends transfer(recipient, amount) from the connected account
// and waits for the receipt.
func (s *TokenService) Transfer(ctx context.Context, req TransferRequest) (*types.Receipt, error) {
	account, err := s.ready()
	if err != nil {
		return nil, err
	}

	req.Recipient = strings.TrimSpace(req.Recipient)
	if req.Recipient == "" || strings.TrimSpace(req.Amount) == "" {
		return nil, &ValidationError{Message: "Recipient and amount are required"}
	}
	if err := chain.ValidateAddress(req.Recipient); err != nil {
		return nil, &ValidationError{Message: "Invalid recipient address"}
	}

	decimals := s.Manager.TokenDecimals(ctx)
	amount, err := chain.ParseUnits(req.Amount, decimals)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if amount.Sign() == 0 {
		return nil, &ValidationError{Message: "Amount must be greater than zero"}
	}

	data, err := chain.TransferData(common.HexToAddress(req.Recipient), amount)
	if err != nil {
		return nil, err
	}

	hash, err := s.Provider.SendTransaction(ctx, account, common.HexToAddress(s.Token), data)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("💸 [TOKENS] Transfer sent",
		zap.String("to", req.Recipient),
		zap.String("amount", req.Amount),
		zap.String("tx_hash", hash.Hex()))

	waitCtx, cancel := context.WithTimeout(ctx, s.WaitTimeout)
	defer cancel()
	receipt, err := s.Provider.WaitMined(waitCtx, hash)
	if err != nil {
		return nil, err
	}
	receipt.TxHash = hash

	if err := s.Manager.RefreshBalance(ctx); err != nil {
		s.Logger.Warn("⚠️ [TOKENS] Balance refresh after transfer failed", zap.Error(err))
	}
	return receipt, nil
}

// PostTransfer is POST /api/tokens/transfer.
func (s *TokenService) PostTransfer(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	receipt, err := s.Transfer(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	blockNumber := ""
	if receipt.BlockNumber != nil {
		blockNumber = receipt.BlockNumber.String()
	}
	return c.JSON(fiber.Map{
		"success": receipt.Status == types.ReceiptStatusSuccessful,
		"txHash":  receipt.TxHash.Hex(),
		"block":   blockNumber,
	})
}
