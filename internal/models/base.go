package models

import (
	"github.com/google/uuid"
)

// SkillPoints is the four-way SP split carried by every reward.
type SkillPoints struct {
	Reading    int64 `json:"reading"`
	Thinking   int64 `json:"thinking"`
	Writing    int64 `json:"writing"`
	Engagement int64 `json:"engagement"`
}

func (sp SkillPoints) Negative() bool {
	return sp.Reading < 0 || sp.Thinking < 0 || sp.Writing < 0 || sp.Engagement < 0
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&CharacterStats{},
		&LedgerEntry{},
		&BonusEvent{},
		&Achievement{},
		&UserAchievement{},
		&Note{},
		&Link{},
		&Notification{},
		&Question{},
		&Signal{},
		&UserSignal{},
		&ModerationAction{},
	}
}
