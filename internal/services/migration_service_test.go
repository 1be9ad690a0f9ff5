package services_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kilnlog-backend/internal/core"
	"kilnlog-backend/internal/localstore"
	"kilnlog-backend/internal/services"
)

type fakeRemote struct {
	pieces       map[uuid.UUID]core.Piece
	inspirations map[uuid.UUID]core.Inspiration
	links        map[pair]bool
	failTitles   map[string]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		pieces:       make(map[uuid.UUID]core.Piece),
		inspirations: make(map[uuid.UUID]core.Inspiration),
		links:        make(map[pair]bool),
		failTitles:   make(map[string]bool),
	}
}

func (f *fakeRemote) CreatePiece(p *core.Piece) error {
	if f.failTitles[p.Title] {
		return fmt.Errorf("simulated create failure")
	}
	f.pieces[p.ID] = *p
	return nil
}

func (f *fakeRemote) CreateInspiration(i *core.Inspiration) error {
	f.inspirations[i.ID] = *i
	return nil
}

func (f *fakeRemote) AddLink(pieceID, inspirationID, userID uuid.UUID) error {
	f.links[pair{pieceID, inspirationID}] = true
	return nil
}

func guestStore(t *testing.T, data *localstore.GuestData) localstore.Store {
	t.Helper()
	store := localstore.NewMemoryStore()
	require.NoError(t, localstore.SaveGuestData(store, data))
	return store
}

func TestMigrateGuestData_MigratesEverything(t *testing.T) {
	remote := newFakeRemote()
	service := services.NewMigrationService(remote, nil)
	userID := uuid.New()

	piece := core.Piece{ID: uuid.New(), Title: "guest mug", CurrentStage: core.StageDrying}
	inspiration := core.Inspiration{ID: uuid.New(), Note: "celadon glaze"}
	store := guestStore(t, &localstore.GuestData{
		Pieces:       []core.Piece{piece},
		Inspirations: []core.Inspiration{inspiration},
		Links:        []localstore.GuestLink{{PieceID: piece.ID, InspirationID: inspiration.ID}},
	})

	report, err := service.MigrateGuestData(store, userID)
	require.NoError(t, err)

	assert.Equal(t, 1, report.PiecesMigrated)
	assert.Equal(t, 1, report.InspirationsMigrated)
	assert.Equal(t, 1, report.LinksMigrated)
	assert.False(t, report.Partial())

	// Remote copies belong to the account, and the local entities now
	// carry their remote ids.
	for _, p := range remote.pieces {
		assert.Equal(t, userID, p.UserID)
	}
	data, err := localstore.LoadGuestData(store)
	require.NoError(t, err)
	require.NotNil(t, data.Pieces[0].RemoteID)
	require.NotNil(t, data.Inspirations[0].RemoteID)
	assert.True(t, remote.links[pair{*data.Pieces[0].RemoteID, *data.Inspirations[0].RemoteID}])
}

func TestMigrateGuestData_SkipsAlreadyMigrated(t *testing.T) {
	remote := newFakeRemote()
	service := services.NewMigrationService(remote, nil)
	existing := uuid.New()

	store := guestStore(t, &localstore.GuestData{
		Pieces: []core.Piece{{
			ID:           uuid.New(),
			Title:        "already there",
			CurrentStage: core.StageFinished,
			RemoteID:     &existing,
		}},
	})

	report, err := service.MigrateGuestData(store, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, report.PiecesMigrated)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, remote.pieces, "a migrated item must not be recreated")
}

func TestMigrateGuestData_PartialFailureLeavesFailedEligible(t *testing.T) {
	remote := newFakeRemote()
	remote.failTitles["broken"] = true
	service := services.NewMigrationService(remote, nil)
	userID := uuid.New()

	ok := core.Piece{ID: uuid.New(), Title: "fine", CurrentStage: core.StageThrowing}
	broken := core.Piece{ID: uuid.New(), Title: "broken", CurrentStage: core.StageThrowing}
	store := guestStore(t, &localstore.GuestData{Pieces: []core.Piece{ok, broken}})

	report, err := service.MigrateGuestData(store, userID)
	require.NoError(t, err)
	assert.True(t, report.Partial())
	assert.Equal(t, 1, report.PiecesMigrated)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "piece", report.Failures[0].Kind)
	assert.Equal(t, broken.ID, report.Failures[0].LocalID)

	// A later run only retries the failed subset.
	remote.failTitles = map[string]bool{}
	rerun, err := service.MigrateGuestData(store, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, rerun.PiecesMigrated)
	assert.Equal(t, 1, rerun.Skipped)
	assert.False(t, rerun.Partial())
	assert.Len(t, remote.pieces, 2)
}

func TestMigrateGuestData_RequiresSession(t *testing.T) {
	service := services.NewMigrationService(newFakeRemote(), nil)

	_, err := service.MigrateGuestData(localstore.NewMemoryStore(), uuid.Nil)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
}
