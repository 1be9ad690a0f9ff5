package models

import (
	"github.com/google/uuid"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/reconcile"
	"kilnlog-backend/internal/services"
)

// Sync outcome labels. The client must be able to tell a clean sync from
// one that committed only part of the batch.
const (
	StatusSynced  = "synced"
	StatusPartial = "partial"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type PieceListResponse struct {
	Pieces []core.Piece `json:"pieces"`
}

type InspirationListResponse struct {
	Inspirations []core.Inspiration `json:"inspirations"`
}

type LinkedIDsResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

type SyncLinksResponse struct {
	Status   string                `json:"status"`
	Added    []uuid.UUID           `json:"added"`
	Removed  []uuid.UUID           `json:"removed"`
	Failures []reconcile.OpFailure `json:"failures,omitempty"`
}

// MigratedItem maps one guest entity's local id to the id it received in
// the account's remote store.
type MigratedItem struct {
	LocalID  uuid.UUID `json:"local_id"`
	RemoteID uuid.UUID `json:"remote_id"`
}

type MigrateResponse struct {
	Status       string                    `json:"status"`
	Report       *services.MigrationReport `json:"report"`
	Pieces       []MigratedItem            `json:"pieces"`
	Inspirations []MigratedItem            `json:"inspirations"`
}

type PhotoUploadResponse struct {
	Photos []string `json:"photos"`
	Errors []string `json:"errors,omitempty"`
}
