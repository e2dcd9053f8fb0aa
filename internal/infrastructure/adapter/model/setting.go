package model

import (
	"time"

	"gorm.io/datatypes"
)

// Setting represents a versioned opaque JSON document, keyed by name.
// The usage-cost override table is stored here.
type Setting struct {
	Key       string         `gorm:"primaryKey;size:64"`
	Value     datatypes.JSON `gorm:"not null"`
	Version   int64          `gorm:"not null;default:1"`
	UpdatedAt time.Time      `gorm:"not null"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}
