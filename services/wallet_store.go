// services/wallet_store.go
package services

import (
	"context"
	"errors"
	"fmt"

	"web3-dashboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletStore is the durable address → personal data map.
// Addresses compare case-insensitively.
type WalletStore interface {
	Get(ctx context.Context, address string) (*models.Wallet, error)
	Upsert(ctx context.Context, wallet models.Wallet) (*models.Wallet, error)
	Delete(ctx context.Context, address string) (bool, error)
	GetAll(ctx context.Context) ([]models.Wallet, error)
}

type GormWalletStore struct {
	DB *gorm.DB
}

func NewWalletStore(db *gorm.DB) *GormWalletStore {
	return &GormWalletStore{DB: db}
}

// Get returns nil, nil when the address is unknown.
func (s *GormWalletStore) Get(ctx context.Context, address string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.DB.WithContext(ctx).
		Where("address = ?", models.NormalizeAddress(address)).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}

// Upsert inserts or replaces the personal data for wallet.Address in one
// statement.
func (s *GormWalletStore) Upsert(ctx context.Context, wallet models.Wallet) (*models.Wallet, error) {
	wallet.Address = models.NormalizeAddress(wallet.Address)
	if wallet.Address == "" {
		return nil, &ValidationError{Message: "Wallet address is required"}
	}

	err := s.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"personal_data", "updated_at"}),
		},
	).Create(&wallet).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert wallet: %w", err)
	}

	return s.Get(ctx, wallet.Address)
}

// Delete reports whether a row was removed.
func (s *GormWalletStore) Delete(ctx context.Context, address string) (bool, error) {
	res := s.DB.WithContext(ctx).
		Where("address = ?", models.NormalizeAddress(address)).
		Delete(&models.Wallet{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete wallet: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormWalletStore) GetAll(ctx context.Context) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := s.DB.WithContext(ctx).Order("updated_at DESC").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}
