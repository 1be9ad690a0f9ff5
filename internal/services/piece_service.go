package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"kilnlog-backend/internal/core"
)

// PieceStore is the persistence surface PieceService needs. Implemented by
// the Supabase DatabaseClient.
type PieceStore interface {
	FindPiece(pieceID, userID uuid.UUID) (*core.Piece, error)
	CreatePiece(p *core.Piece) error
	UpdatePiece(p *core.Piece) error
}

type PieceService struct {
	store PieceStore
}

func NewPieceService(store PieceStore) *PieceService {
	return &PieceService{store: store}
}

// Upsert persists a piece with the stage-transition bookkeeping applied:
//
//   - new piece: inserted as given;
//   - stage unchanged: the stored history wins over whatever the caller
//     supplied;
//   - non-terminal -> terminal: next step and reminder are cleared and a
//     moved_to_gallery event is appended;
//   - terminal -> non-terminal: a returned_to_wip event is appended,
//     recording the destination stage;
//   - any other stage change: the caller's history passes through.
//
// Upsert never modifies stage_history; only advancing a piece appends
// there. The returned bool reports whether the piece was created.
func (s *PieceService) Upsert(p *core.Piece, now time.Time) (*core.Piece, bool, error) {
	if p.UserID == uuid.Nil {
		return nil, false, ErrNotAuthenticated
	}
	if p.Title == "" {
		return nil, false, fmt.Errorf("piece title must not be empty")
	}
	if !p.CurrentStage.Valid() {
		return nil, false, fmt.Errorf("unknown stage %q", p.CurrentStage)
	}

	stored, err := s.store.FindPiece(p.ID, p.UserID)
	if err != nil {
		return nil, false, err
	}

	if stored == nil {
		if err := s.store.CreatePiece(p); err != nil {
			return nil, false, err
		}
		return p, true, nil
	}

	// stage_history always carries over from the stored copy; only
	// Advance may grow it.
	p.StageHistory = stored.StageHistory

	switch {
	case stored.CurrentStage == p.CurrentStage:
		p.History = stored.History

	case !stored.CurrentStage.Terminal() && p.CurrentStage.Terminal():
		p.NextStep = nil
		p.NextReminderAt = nil
		p.History = append(p.History, core.Event{
			Event: core.EventMovedToGallery,
			Date:  now,
		})

	case stored.CurrentStage.Terminal() && !p.CurrentStage.Terminal():
		p.History = append(p.History, core.Event{
			Event: core.EventReturnedToWIP,
			Date:  now,
			Extra: map[string]any{"stage": string(p.CurrentStage)},
		})
	}

	if err := s.store.UpdatePiece(p); err != nil {
		return nil, false, err
	}
	return p, false, nil
}

// Advance moves the piece to its next stage and persists the result.
func (s *PieceService) Advance(pieceID, userID uuid.UUID, now time.Time) (*core.Piece, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	stored, err := s.store.FindPiece(pieceID, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("piece %s not found", pieceID)
	}

	advanced := core.Advance(*stored, now)
	if err := s.store.UpdatePiece(&advanced); err != nil {
		return nil, err
	}
	return &advanced, nil
}
