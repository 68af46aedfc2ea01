// services/settings_store.go
package services

import (
	"context"
	"errors"
	"fmt"

	"web3-dashboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsStore persists service-local preferences such as the selected
// network.
type SettingsStore struct {
	DB *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{DB: db}
}

// Network returns the persisted selection, or DefaultNetwork.
func (s *SettingsStore) Network(ctx context.Context) (models.Network, error) {
	var setting models.Setting
	err := s.DB.WithContext(ctx).
		Where("key = ?", models.SettingSelectedNetwork).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultNetwork, nil
	}
	if err != nil {
		return models.DefaultNetwork, fmt.Errorf("failed to load network setting: %w", err)
	}
	return models.NetworkOrDefault(setting.Value), nil
}

func (s *SettingsStore) SetNetwork(ctx context.Context, network models.Network) error {
	setting := models.Setting{Key: models.SettingSelectedNetwork, Value: string(network)}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save network setting: %w", err)
	}
	return nil
}
