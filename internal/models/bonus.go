package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BonusType string

const (
	BonusTrailblazer   BonusType = "trailblazer"
	BonusScholar       BonusType = "scholar"
	BonusBridgeBuilder BonusType = "bridge_builder"
	BonusStreak        BonusType = "streak"
	BonusCombo         BonusType = "combo"
	BonusHubFormation  BonusType = "hub_formation"
	BonusDiscovery     BonusType = "discovery"
	BonusSolution      BonusType = "solution"
)

func (t BonusType) Valid() bool {
	switch t {
	case BonusTrailblazer, BonusScholar, BonusBridgeBuilder, BonusStreak,
		BonusCombo, BonusHubFormation, BonusDiscovery, BonusSolution:
		return true
	}
	return false
}

// LedgerReason is the reason tag of the ledger entry a bonus of this type produces.
func (t BonusType) LedgerReason() string {
	return "bonus_" + string(t)
}

type BonusEvent struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         BonusType         `gorm:"size:32;not null;index" json:"type"`
	TriggerID    *uuid.UUID        `gorm:"type:uuid;index" json:"trigger_id,omitempty"`
	XP           int64             `gorm:"column:xp;not null;default:0" json:"xp"`
	SPReading    int64             `gorm:"column:sp_reading;not null;default:0" json:"sp_reading"`
	SPThinking   int64             `gorm:"column:sp_thinking;not null;default:0" json:"sp_thinking"`
	SPWriting    int64             `gorm:"column:sp_writing;not null;default:0" json:"sp_writing"`
	SPEngagement int64             `gorm:"column:sp_engagement;not null;default:0" json:"sp_engagement"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (BonusEvent) TableName() string {
	return "bonus_events"
}

func (b *BonusEvent) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}
