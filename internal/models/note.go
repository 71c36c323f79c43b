package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteType string

const (
	NoteFleeting   NoteType = "fleeting"
	NoteLiterature NoteType = "literature"
	NotePermanent  NoteType = "permanent"
)

func (t NoteType) Valid() bool {
	switch t {
	case NoteFleeting, NoteLiterature, NotePermanent:
		return true
	}
	return false
}

type NoteStatus string

const (
	NotePublished NoteStatus = "published"
	NoteFlagged   NoteStatus = "flagged"
	NoteHidden    NoteStatus = "hidden"
)

func (s NoteStatus) Valid() bool {
	switch s {
	case NotePublished, NoteFlagged, NoteHidden:
		return true
	}
	return false
}

// EmbeddingDimensions matches the text-embedding-004 output size.
const EmbeddingDimensions = 768

// Note is an atom: one user-authored knowledge unit.
type Note struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Body            string           `gorm:"type:text" json:"body"`
	Type            NoteType         `gorm:"size:16;not null;index" json:"type"`
	Status          NoteStatus       `gorm:"size:16;not null;default:published" json:"status"`
	QualityScore    *int             `json:"quality_score,omitempty"`
	QualityDegraded bool             `gorm:"not null;default:false" json:"quality_degraded"`
	Embedding       *pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	HubBonusGranted bool             `gorm:"not null;default:false;index" json:"hub_bonus_granted"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	newID(&n.ID)
	if n.Status == "" {
		n.Status = NotePublished
	}
	return nil
}

// Link is an undirected-for-counting edge between two notes.
type Link struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SourceID uuid.UUID `gorm:"type:uuid;not null;index" json:"source_id"`
	TargetID uuid.UUID `gorm:"type:uuid;not null;index" json:"target_id"`
	// PairKey is the same for A->B and B->A, so the unique index rejects either direction.
	PairKey   string    `gorm:"size:73;not null;uniqueIndex:uk_link_pair" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Link) TableName() string {
	return "links"
}

func (l *Link) BeforeCreate(tx *gorm.DB) error {
	newID(&l.ID)
	l.PairKey = LinkPairKey(l.SourceID, l.TargetID)
	return nil
}

// LinkPairKey orders the two note ids so the key ignores link direction.
func LinkPairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

type ModerationAction struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"note_id"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null" json:"actor_id"`
	FromStatus NoteStatus `gorm:"size:16;not null" json:"from_status"`
	ToStatus   NoteStatus `gorm:"size:16;not null" json:"to_status"`
	Reason     string     `gorm:"size:255" json:"reason"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (ModerationAction) TableName() string {
	return "moderation_actions"
}

func (m *ModerationAction) BeforeCreate(tx *gorm.DB) error {
	newID(&m.ID)
	return nil
}
