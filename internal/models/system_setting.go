package models

import "time"

// SystemSetting is the generic key/value row backing runtime-mutable
// configuration. Typed access lives in the settings service; nothing
// else should read these rows directly.
type SystemSetting struct {
	Key       string `gorm:"primarykey;type:varchar(100)"`
	Value     string `gorm:"not null;type:text"`
	UpdatedAt time.Time
}
