package core

import (
	"time"

	"github.com/google/uuid"
)

// Event names recorded in a piece's history log. These are cross-cutting
// lifecycle events, distinct from stage completions (see StageRecord).
const (
	EventMovedToGallery       = "moved_to_gallery"
	EventReturnedToWIP        = "returned_to_wip"
	EventInspirationsLinked   = "inspirations_linked"
	EventInspirationsUnlinked = "inspirations_unlinked"
)

// StageRecord is one completed stage. Records are append-only and kept in
// insertion order, which is also chronological order.
type StageRecord struct {
	Stage Stage     `json:"stage"`
	Date  time.Time `json:"date"`
}

// Event is one free-form history log entry.
type Event struct {
	Event string         `json:"event"`
	Date  time.Time      `json:"date"`
	Extra map[string]any `json:"extra,omitempty"`
}

// Piece is a tracked pottery item progressing through production stages.
// Photos are ordered; the first entry is the cover image.
type Piece struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	Title          string        `json:"title"`
	CurrentStage   Stage         `json:"current_stage"`
	StageHistory   []StageRecord `json:"stage_history"`
	History        []Event       `json:"history"`
	NextStep       *string       `json:"next_step,omitempty"`
	NextReminderAt *time.Time    `json:"next_reminder_at,omitempty"`
	Photos         []string      `json:"photos"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// RemoteID is only set on locally stored guest copies, once the piece
	// has been migrated to an account. Absent until migration succeeds.
	RemoteID *uuid.UUID `json:"remote_id,omitempty"`
}

// Inspiration is a saved reference (photos, note, link) that can be linked
// to any number of pieces. Tag order is preserved for display.
type Inspiration struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Note      string    `json:"note"`
	Tags      []string  `json:"tags"`
	Photos    []string  `json:"photos"`
	LinkURL   string    `json:"link_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	RemoteID *uuid.UUID `json:"remote_id,omitempty"`
}

// Link associates a piece with an inspiration. At most one link exists per
// (piece, inspiration) pair; creation is idempotent at the store.
type Link struct {
	PieceID       uuid.UUID `json:"piece_id"`
	InspirationID uuid.UUID `json:"inspiration_id"`
	UserID        uuid.UUID `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}
