// models/wallet.go
package models

import (
	"strings"
	"time"
)

// Wallet stores the free-form personal data a user keeps against an address.
// Table name: wallets
type Wallet struct {
	Address      string    `gorm:"primaryKey;type:varchar(128);not null" json:"address"` // lower-cased
	PersonalData string    `gorm:"type:text;not null;default:''" json:"personalData"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// NormalizeAddress is the canonical form of a wallet key.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
