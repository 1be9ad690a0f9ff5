package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/localstore"
)

// MigrationRemote is what the migration routine needs from the hosted
// store. Implemented by the Supabase DatabaseClient.
type MigrationRemote interface {
	CreatePiece(p *core.Piece) error
	CreateInspiration(i *core.Inspiration) error
	AddLink(pieceID, inspirationID, userID uuid.UUID) error
}

// ItemFailure records one guest item that could not be migrated.
type ItemFailure struct {
	Kind    string    `json:"kind"` // "piece", "inspiration" or "link"
	LocalID uuid.UUID `json:"local_id"`
	Message string    `json:"message"`
}

// MigrationReport summarizes one migration run. Partial migration is an
// accepted terminal state: the failed subset stays eligible for the next
// run because only items without a remote id are attempted.
type MigrationReport struct {
	PiecesMigrated       int           `json:"pieces_migrated"`
	InspirationsMigrated int           `json:"inspirations_migrated"`
	LinksMigrated        int           `json:"links_migrated"`
	Skipped              int           `json:"skipped"`
	Failures             []ItemFailure `json:"failures,omitempty"`
}

func (r *MigrationReport) Partial() bool {
	return len(r.Failures) > 0
}

func (r *MigrationReport) addFailure(kind string, localID uuid.UUID, err error) {
	r.Failures = append(r.Failures, ItemFailure{
		Kind:    kind,
		LocalID: localID,
		Message: err.Error(),
	})
}

type MigrationService struct {
	remote MigrationRemote
	log    *zap.Logger
}

func NewMigrationService(remote MigrationRemote, log *zap.Logger) *MigrationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MigrationService{remote: remote, log: log}
}

// MigrateGuestData copies every locally stored guest piece and inspiration
// that has no remote id yet into the account's remote store, then recreates
// the guest links between the migrated entities. The assigned remote id is
// written back to the local store so a repeat run only retries the failed
// subset. Per-item failures are logged and skipped; successes are never
// rolled back.
func (m *MigrationService) MigrateGuestData(store localstore.Store, userID uuid.UUID) (*MigrationReport, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	data, err := localstore.LoadGuestData(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load guest data: %w", err)
	}

	report := &MigrationReport{}
	now := time.Now()

	for idx := range data.Pieces {
		local := &data.Pieces[idx]
		if local.RemoteID != nil {
			report.Skipped++
			continue
		}

		remote := *local
		remote.ID = uuid.New()
		remote.UserID = userID
		remote.RemoteID = nil
		remote.CreatedAt = now
		remote.UpdatedAt = now

		if err := m.remote.CreatePiece(&remote); err != nil {
			m.log.Warn("failed to migrate piece",
				zap.String("local_id", local.ID.String()),
				zap.Error(err))
			report.addFailure("piece", local.ID, err)
			continue
		}

		id := remote.ID
		local.RemoteID = &id
		report.PiecesMigrated++
	}

	for idx := range data.Inspirations {
		local := &data.Inspirations[idx]
		if local.RemoteID != nil {
			report.Skipped++
			continue
		}

		remote := *local
		remote.ID = uuid.New()
		remote.UserID = userID
		remote.RemoteID = nil
		remote.CreatedAt = now

		if err := m.remote.CreateInspiration(&remote); err != nil {
			m.log.Warn("failed to migrate inspiration",
				zap.String("local_id", local.ID.String()),
				zap.Error(err))
			report.addFailure("inspiration", local.ID, err)
			continue
		}

		id := remote.ID
		local.RemoteID = &id
		report.InspirationsMigrated++
	}

	pieceRemoteIDs := remoteIDIndexPieces(data.Pieces)
	inspirationRemoteIDs := remoteIDIndexInspirations(data.Inspirations)

	for _, link := range data.Links {
		remotePiece, okPiece := pieceRemoteIDs[link.PieceID]
		remoteInspiration, okInspiration := inspirationRemoteIDs[link.InspirationID]
		if !okPiece || !okInspiration {
			// One endpoint did not migrate; the link stays local until
			// a later run succeeds.
			report.Skipped++
			continue
		}

		if err := m.remote.AddLink(remotePiece, remoteInspiration, userID); err != nil {
			m.log.Warn("failed to migrate link",
				zap.String("piece_id", link.PieceID.String()),
				zap.String("inspiration_id", link.InspirationID.String()),
				zap.Error(err))
			report.addFailure("link", link.PieceID, err)
			continue
		}
		report.LinksMigrated++
	}

	if err := localstore.SaveGuestData(store, data); err != nil {
		return report, fmt.Errorf("failed to record migrated ids: %w", err)
	}

	return report, nil
}

func remoteIDIndexPieces(pieces []core.Piece) map[uuid.UUID]uuid.UUID {
	index := make(map[uuid.UUID]uuid.UUID, len(pieces))
	for _, p := range pieces {
		if p.RemoteID != nil {
			index[p.ID] = *p.RemoteID
		}
	}
	return index
}

func remoteIDIndexInspirations(inspirations []core.Inspiration) map[uuid.UUID]uuid.UUID {
	index := make(map[uuid.UUID]uuid.UUID, len(inspirations))
	for _, i := range inspirations {
		if i.RemoteID != nil {
			index[i.ID] = *i.RemoteID
		}
	}
	return index
}
