package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "open"
	QuestionResolved QuestionStatus = "resolved"
)

type Question struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AskerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"asker_id"`
	NoteID     *uuid.UUID     `gorm:"type:uuid;index" json:"note_id,omitempty"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	Body       string         `gorm:"type:text" json:"body"`
	Status     QuestionStatus `gorm:"size:16;not null;default:open" json:"status"`
	SolverID   *uuid.UUID     `gorm:"type:uuid;index" json:"solver_id,omitempty"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	newID(&q.ID)
	if q.Status == "" {
		q.Status = QuestionOpen
	}
	return nil
}

// Signal is a quest-like task users discover and then complete.
type Signal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	XPReward     int64     `gorm:"not null;default:0" json:"xp_reward"`
	SPEngagement int64     `gorm:"column:sp_engagement;not null;default:0" json:"sp_engagement"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Signal) TableName() string {
	return "signals"
}

func (s *Signal) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

type SignalStatus string

const (
	SignalDiscovered SignalStatus = "discovered"
	SignalCompleted  SignalStatus = "completed"
)

type UserSignal struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_user_signal" json:"user_id"`
	SignalID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uk_user_signal" json:"signal_id"`
	Status       SignalStatus `gorm:"size:16;not null;index" json:"status"`
	DiscoveredAt time.Time    `gorm:"autoCreateTime" json:"discovered_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

func (UserSignal) TableName() string {
	return "user_signals"
}

func (u *UserSignal) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}
