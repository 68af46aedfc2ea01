// models/setting.go
package models

import "time"

// Setting is a small key-value row for service-local preferences.
// Table name: settings
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// SettingSelectedNetwork holds the persisted NetworkSelection.
const SettingSelectedNetwork = "selectedNetwork"

// MigrateModels lists every table the service owns.
var MigrateModels = []any{
	&Wallet{},
	&Post{},
	&Comment{},
	&Setting{},
}
