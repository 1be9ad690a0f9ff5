package services

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/reconcile"
)

// LinkDB is the association surface LinkService needs. Implemented by the
// Supabase DatabaseClient.
type LinkDB interface {
	AddLink(pieceID, inspirationID, userID uuid.UUID) error
	RemoveLink(pieceID, inspirationID, userID uuid.UUID) error
	ListLinkedInspirationIDs(pieceID, userID uuid.UUID) ([]uuid.UUID, error)
	ListLinkedPieceIDs(inspirationID, userID uuid.UUID) ([]uuid.UUID, error)
	AppendPieceEvent(pieceID, userID uuid.UUID, event core.Event) error
}

type LinkService struct {
	db  LinkDB
	log *zap.Logger
}

func NewLinkService(db LinkDB, log *zap.Logger) *LinkService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LinkService{db: db, log: log}
}

// pieceAnchoredStore binds the link table to a user with the piece as the
// anchor side of each operation.
type pieceAnchoredStore struct {
	db     LinkDB
	userID uuid.UUID
}

func (s pieceAnchoredStore) AddLink(anchorID, otherID uuid.UUID) error {
	return s.db.AddLink(anchorID, otherID, s.userID)
}

func (s pieceAnchoredStore) RemoveLink(anchorID, otherID uuid.UUID) error {
	return s.db.RemoveLink(anchorID, otherID, s.userID)
}

// inspirationAnchoredStore is the reverse direction: the anchor is the
// inspiration and the other id is the piece.
type inspirationAnchoredStore struct {
	db     LinkDB
	userID uuid.UUID
}

func (s inspirationAnchoredStore) AddLink(anchorID, otherID uuid.UUID) error {
	return s.db.AddLink(otherID, anchorID, s.userID)
}

func (s inspirationAnchoredStore) RemoveLink(anchorID, otherID uuid.UUID) error {
	return s.db.RemoveLink(otherID, anchorID, s.userID)
}

// SetPieceInspirations reconciles the persisted inspiration links of one
// piece against the desired set. Operations that succeed stay committed
// even when others fail; the error is a *reconcile.PartialError in that
// case. A successful change appends a linked/unlinked audit event to the
// piece's history.
func (s *LinkService) SetPieceInspirations(pieceID, userID uuid.UUID, desired []uuid.UUID) (reconcile.Result, error) {
	if userID == uuid.Nil {
		return reconcile.Result{}, ErrNotAuthenticated
	}

	current, err := s.db.ListLinkedInspirationIDs(pieceID, userID)
	if err != nil {
		return reconcile.Result{}, err
	}

	diff := reconcile.ComputeDiff(current, desired)
	result, syncErr := reconcile.SyncLinks(pieceAnchoredStore{db: s.db, userID: userID}, pieceID, diff, s.log)

	s.appendLinkEvents(pieceID, userID, len(result.Added), len(result.Removed))

	return result, syncErr
}

// SetInspirationPieces is the reverse reconciliation: the desired set of
// pieces linked to one inspiration. Audit events land on each affected
// piece.
func (s *LinkService) SetInspirationPieces(inspirationID, userID uuid.UUID, desired []uuid.UUID) (reconcile.Result, error) {
	if userID == uuid.Nil {
		return reconcile.Result{}, ErrNotAuthenticated
	}

	current, err := s.db.ListLinkedPieceIDs(inspirationID, userID)
	if err != nil {
		return reconcile.Result{}, err
	}

	diff := reconcile.ComputeDiff(current, desired)
	result, syncErr := reconcile.SyncLinks(inspirationAnchoredStore{db: s.db, userID: userID}, inspirationID, diff, s.log)

	for _, pieceID := range result.Added {
		s.appendLinkEvents(pieceID, userID, 1, 0)
	}
	for _, pieceID := range result.Removed {
		s.appendLinkEvents(pieceID, userID, 0, 1)
	}

	return result, syncErr
}

func (s *LinkService) ListPieceInspirations(pieceID, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.db.ListLinkedInspirationIDs(pieceID, userID)
}

func (s *LinkService) ListInspirationPieces(inspirationID, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.db.ListLinkedPieceIDs(inspirationID, userID)
}

// appendLinkEvents records the audit trail on the piece history. This is
// observability, not correctness: failures are logged and dropped.
func (s *LinkService) appendLinkEvents(pieceID, userID uuid.UUID, added, removed int) {
	now := time.Now()
	if added > 0 {
		event := core.Event{
			Event: core.EventInspirationsLinked,
			Date:  now,
			Extra: map[string]any{"count": added},
		}
		if err := s.db.AppendPieceEvent(pieceID, userID, event); err != nil {
			s.log.Warn("failed to append link event",
				zap.String("piece_id", pieceID.String()),
				zap.Error(err))
		}
	}
	if removed > 0 {
		event := core.Event{
			Event: core.EventInspirationsUnlinked,
			Date:  now,
			Extra: map[string]any{"count": removed},
		}
		if err := s.db.AppendPieceEvent(pieceID, userID, event); err != nil {
			s.log.Warn("failed to append unlink event",
				zap.String("piece_id", pieceID.String()),
				zap.Error(err))
		}
	}
}
