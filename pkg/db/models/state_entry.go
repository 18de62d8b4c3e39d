package models

import "time"

// StateEntry stores one persisted POS collection as a JSON document.
type StateEntry struct {
	Key       string    `gorm:"column:state_key;type:varchar(64);primaryKey"`
	Document  string    `gorm:"column:document;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StateEntry) TableName() string {
	return "pos_state"
}
