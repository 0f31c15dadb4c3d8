// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormPlayerScore is the persisted per-player counter row.
type GormPlayerScore struct {
	gorm.Model
	Name     string         `gorm:"uniqueIndex;not null"`
	Counters map[string]int `gorm:"type:jsonb"`
}

// GormMatchRecord is one started game.
type GormMatchRecord struct {
	gorm.Model
	RoomID   string   `gorm:"index;not null"`
	Players  []string `gorm:"type:jsonb;not null"`
	Restarts int      `gorm:"default:0"`
}
