package models

import (
	"time"

	"gorm.io/datatypes"
)

// NetworkData ist eine Zeile der append-only Snapshot-Tabelle.
type NetworkData struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CongressRange datatypes.JSON `json:"congress_range" gorm:"type:jsonb;not null"`
	Data          datatypes.JSON `json:"data" gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `json:"created_at" gorm:"index;default:CURRENT_TIMESTAMP"`
}

// TableName gibt explizit den Tabellennamen an.
func (NetworkData) TableName() string {
	return "network_data"
}
