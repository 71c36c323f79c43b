package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Handle    string    `gorm:"size:64;not null;uniqueIndex" json:"handle"`
	Role      Role      `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CharacterStats holds a user's running totals. It mirrors the sum of the user's
// stats-applied ledger entries.
type CharacterStats struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	XPTotal      int64     `gorm:"column:xp_total;not null;default:0" json:"xp_total"`
	SPReading    int64     `gorm:"column:sp_reading;not null;default:0" json:"sp_reading"`
	SPThinking   int64     `gorm:"column:sp_thinking;not null;default:0" json:"sp_thinking"`
	SPWriting    int64     `gorm:"column:sp_writing;not null;default:0" json:"sp_writing"`
	SPEngagement int64     `gorm:"column:sp_engagement;not null;default:0" json:"sp_engagement"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CharacterStats) TableName() string {
	return "character_stats"
}

func (s *CharacterStats) SkillPoints() SkillPoints {
	return SkillPoints{
		Reading:    s.SPReading,
		Thinking:   s.SPThinking,
		Writing:    s.SPWriting,
		Engagement: s.SPEngagement,
	}
}
