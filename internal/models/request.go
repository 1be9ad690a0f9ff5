package models

import (
	"time"

	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/localstore"
)

type UpsertPieceRequest struct {
	// ID is optional; omitted means "create with a server-assigned id".
	ID             string       `json:"id,omitempty"`
	Title          string       `json:"title" binding:"required"`
	CurrentStage   string       `json:"current_stage" binding:"required"`
	History        []core.Event `json:"history,omitempty"`
	NextStep       *string      `json:"next_step,omitempty"`
	NextReminderAt *time.Time   `json:"next_reminder_at,omitempty"`
	Photos         []string     `json:"photos,omitempty"`
}

type CreateInspirationRequest struct {
	Note    string   `json:"note"`
	Tags    []string `json:"tags,omitempty"`
	Photos  []string `json:"photos,omitempty"`
	LinkURL string   `json:"link_url,omitempty"`
}

// SetPieceInspirationsRequest carries the full desired set of inspiration
// ids for one piece; the server reconciles against what is persisted.
type SetPieceInspirationsRequest struct {
	InspirationIDs []string `json:"inspiration_ids"`
}

// SetInspirationPiecesRequest is the reverse direction.
type SetInspirationPiecesRequest struct {
	PieceIDs []string `json:"piece_ids"`
}

// MigrateRequest is the guest bundle a freshly signed-in client uploads:
// its entire on-device collections, local ids included.
type MigrateRequest struct {
	Pieces       []core.Piece           `json:"pieces"`
	Inspirations []core.Inspiration     `json:"inspirations"`
	Links        []localstore.GuestLink `json:"links"`
}
