package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLedgerImmutable = errors.New("ledger entries are immutable")

type LedgerEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_user_time" json:"user_id"`
	XP           int64      `gorm:"column:xp;not null;default:0" json:"xp"`
	SPReading    int64      `gorm:"column:sp_reading;not null;default:0" json:"sp_reading"`
	SPThinking   int64      `gorm:"column:sp_thinking;not null;default:0" json:"sp_thinking"`
	SPWriting    int64      `gorm:"column:sp_writing;not null;default:0" json:"sp_writing"`
	SPEngagement int64      `gorm:"column:sp_engagement;not null;default:0" json:"sp_engagement"`
	Reason       string     `gorm:"size:64;not null;index" json:"reason"`
	SourceID     *uuid.UUID `gorm:"type:uuid;index" json:"source_id,omitempty"`
	StatsApplied bool       `gorm:"not null;default:false" json:"stats_applied"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index:idx_ledger_user_time" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	newID(&e.ID)
	return nil
}

func (e *LedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

func (e *LedgerEntry) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

func (e *LedgerEntry) SkillPoints() SkillPoints {
	return SkillPoints{
		Reading:    e.SPReading,
		Thinking:   e.SPThinking,
		Writing:    e.SPWriting,
		Engagement: e.SPEngagement,
	}
}
