package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metric names an aggregate counter an achievement rule compares against its threshold.
type Metric string

const (
	MetricPermanentNotes    Metric = "permanent_notes"
	MetricConnections       Metric = "connections"
	MetricQuestionsResolved Metric = "questions_resolved"
	MetricSignalsCompleted  Metric = "signals_completed"
	MetricHubs              Metric = "hubs"
)

type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string    `gorm:"size:64;not null;uniqueIndex" json:"key"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Metric      Metric    `gorm:"size:32;not null" json:"metric"`
	Threshold   int64     `gorm:"not null" json:"threshold"`
	XPReward    int64     `gorm:"not null;default:0" json:"xp_reward"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_user_achievement" json:"user_id"`
	AchievementID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

func (u *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}
