package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/services"
)

type fakePieceStore struct {
	pieces map[uuid.UUID]core.Piece
}

func newFakePieceStore() *fakePieceStore {
	return &fakePieceStore{pieces: make(map[uuid.UUID]core.Piece)}
}

func (f *fakePieceStore) FindPiece(pieceID, userID uuid.UUID) (*core.Piece, error) {
	p, ok := f.pieces[pieceID]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePieceStore) CreatePiece(p *core.Piece) error {
	f.pieces[p.ID] = *p
	return nil
}

func (f *fakePieceStore) UpdatePiece(p *core.Piece) error {
	f.pieces[p.ID] = *p
	return nil
}

func TestUpsert_CreatesNewPiece(t *testing.T) {
	store := newFakePieceStore()
	service := services.NewPieceService(store)

	piece := &core.Piece{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		Title:        "teapot",
		CurrentStage: core.StageThrowing,
	}

	saved, created, err := service.Upsert(piece, time.Now())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, store.pieces, saved.ID)
}

func TestUpsert_StageUnchangedKeepsStoredHistory(t *testing.T) {
	store := newFakePieceStore()
	service := services.NewPieceService(store)
	userID := uuid.New()
	now := time.Now()

	stored := &core.Piece{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "teapot",
		CurrentStage: core.StageGlazing,
		History:      []core.Event{{Event: core.EventReturnedToWIP, Date: now}},
	}
	_, _, err := service.Upsert(stored, now)
	require.NoError(t, err)

	update := &core.Piece{
		ID:           stored.ID,
		UserID:       userID,
		Title:        "teapot v2",
		CurrentStage: core.StageGlazing,
		History:      []core.Event{{Event: "bogus_client_event", Date: now}},
	}
	saved, created, err := service.Upsert(update, now)
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, saved.History, 1)
	assert.Equal(t, core.EventReturnedToWIP, saved.History[0].Event,
		"stored history must win when the stage did not change")
	assert.Equal(t, "teapot v2", store.pieces[stored.ID].Title)
}

func TestUpsert_MoveToTerminalClearsReminder(t *testing.T) {
	store := newFakePieceStore()
	service := services.NewPieceService(store)
	userID := uuid.New()
	now := time.Now()

	stored := &core.Piece{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "bowl",
		CurrentStage: core.StageDecorating,
	}
	_, _, err := service.Upsert(stored, now)
	require.NoError(t, err)

	step := "Move to Finished"
	due := now.AddDate(0, 0, 1)
	update := &core.Piece{
		ID:             stored.ID,
		UserID:         userID,
		Title:          "bowl",
		CurrentStage:   core.StageFinished,
		NextStep:       &step,
		NextReminderAt: &due,
	}
	saved, _, err := service.Upsert(update, now)
	require.NoError(t, err)

	assert.Nil(t, saved.NextStep)
	assert.Nil(t, saved.NextReminderAt)
	require.Len(t, saved.History, 1)
	assert.Equal(t, core.EventMovedToGallery, saved.History[0].Event)
}

func TestUpsert_ReturnToWIPRecordsDestination(t *testing.T) {
	store := newFakePieceStore()
	service := services.NewPieceService(store)
	userID := uuid.New()
	now := time.Now()

	stored := &core.Piece{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "vase",
		CurrentStage: core.StageFinished,
	}
	_, _, err := service.Upsert(stored, now)
	require.NoError(t, err)

	update := &core.Piece{
		ID:           stored.ID,
		UserID:       userID,
		Title:        "vase",
		CurrentStage: core.StageGlazing,
	}
	saved, _, err := service.Upsert(update, now)
	require.NoError(t, err)

	require.Len(t, saved.History, 1)
	assert.Equal(t, core.EventReturnedToWIP, saved.History[0].Event)
	assert.Equal(t, string(core.StageGlazing), saved.History[0].Extra["stage"])
}

func TestUpsert_NeverTouchesStageHistory(t *testing.T) {
	store := newFakePieceStore()
	service := services.NewPieceService(store)
	userID := uuid.New()
	now := time.Now()

	stored := &core.Piece{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "cup",
		CurrentStage: core.StageTrimming,
		StageHistory: []core.StageRecord{{Stage: core.StageThrowing, Date: now}},
	}
	_, _, err := service.Upsert(stored, now)
	require.NoError(t, err)

	update := &core.Piece{
		ID:           stored.ID,
		UserID:       userID,
		Title:        "cup",
		CurrentStage: core.StageDrying,
		StageHistory: []core.StageRecord{}, // caller tries to wipe it
	}
	saved, _, err := service.Upsert(update, now)
	require.NoError(t, err)

	require.Len(t, saved.StageHistory, 1)
	assert.Equal(t, core.StageThrowing, saved.StageHistory[0].Stage)
}

func TestUpsert_Validation(t *testing.T) {
	service := services.NewPieceService(newFakePieceStore())
	now := time.Now()

	_, _, err := service.Upsert(&core.Piece{
		ID: uuid.New(), Title: "no owner", CurrentStage: core.StageThrowing,
	}, now)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, _, err = service.Upsert(&core.Piece{
		ID: uuid.New(), UserID: uuid.New(), CurrentStage: core.StageThrowing,
	}, now)
	assert.Error(t, err, "empty title must be rejected")

	_, _, err = service.Upsert(&core.Piece{
		ID: uuid.New(), UserID: uuid.New(), Title: "x", CurrentStage: core.Stage("wedging"),
	}, now)
	assert.Error(t, err, "unknown stage must be rejected")
}

func TestAdvance_PersistsTransition(t *testing.T) {
	store := newFakePieceStore()
	service := services.NewPieceService(store)
	userID := uuid.New()
	now := time.Now()

	stored := &core.Piece{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        "jar",
		CurrentStage: core.StageThrowing,
	}
	_, _, err := service.Upsert(stored, now)
	require.NoError(t, err)

	advanced, err := service.Advance(stored.ID, userID, now)
	require.NoError(t, err)
	assert.Equal(t, core.StageTrimming, advanced.CurrentStage)

	persisted := store.pieces[stored.ID]
	assert.Equal(t, core.StageTrimming, persisted.CurrentStage)
	require.Len(t, persisted.StageHistory, 1)
	assert.Equal(t, core.StageThrowing, persisted.StageHistory[0].Stage)
}

func TestAdvance_UnknownPiece(t *testing.T) {
	service := services.NewPieceService(newFakePieceStore())

	_, err := service.Advance(uuid.New(), uuid.New(), time.Now())
	assert.Error(t, err)
}
