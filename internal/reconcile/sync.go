package reconcile

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LinkStore is the association store one sync run applies its operations
// against. AddLink must be idempotent (re-adding an existing pair is a
// success, not an error); RemoveLink of an absent pair must be a no-op.
type LinkStore interface {
	AddLink(anchorID, otherID uuid.UUID) error
	RemoveLink(anchorID, otherID uuid.UUID) error
}

// OpFailure records one link operation that could not be applied.
type OpFailure struct {
	Op      string    `json:"op"` // "add" or "remove"
	OtherID uuid.UUID `json:"other_id"`
	Err     error     `json:"-"`
	Message string    `json:"message"`
}

// PartialError aggregates per-link failures from one sync run. The
// operations that succeeded stay committed.
type PartialError struct {
	Failures []OpFailure
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("link sync: %d operation(s) failed", len(e.Failures))
}

// Result reports what one SyncLinks run actually changed.
type Result struct {
	Added    []uuid.UUID
	Removed  []uuid.UUID
	Failures []OpFailure
}

// SyncLinks applies a diff against the store for the given anchor entity.
// All removals are attempted before any addition. Every operation is tried:
// a per-link failure is logged and collected, never aborts the batch. When
// any operation failed the returned error is a *PartialError listing them;
// the successful operations remain committed either way.
func SyncLinks(store LinkStore, anchorID uuid.UUID, diff Diff, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var result Result
	for _, id := range diff.ToRemove {
		if err := store.RemoveLink(anchorID, id); err != nil {
			log.Warn("failed to remove link",
				zap.String("anchor_id", anchorID.String()),
				zap.String("other_id", id.String()),
				zap.Error(err))
			result.Failures = append(result.Failures, OpFailure{
				Op: "remove", OtherID: id, Err: err, Message: err.Error(),
			})
			continue
		}
		result.Removed = append(result.Removed, id)
	}

	for _, id := range diff.ToAdd {
		if err := store.AddLink(anchorID, id); err != nil {
			log.Warn("failed to add link",
				zap.String("anchor_id", anchorID.String()),
				zap.String("other_id", id.String()),
				zap.Error(err))
			result.Failures = append(result.Failures, OpFailure{
				Op: "add", OtherID: id, Err: err, Message: err.Error(),
			})
			continue
		}
		result.Added = append(result.Added, id)
	}

	if len(result.Failures) > 0 {
		return result, &PartialError{Failures: result.Failures}
	}
	return result, nil
}
