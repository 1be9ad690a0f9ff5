package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kilnlog-backend/internal/core"
)

func TestSuccessor_FollowsProductionOrder(t *testing.T) {
	expected := map[core.Stage]core.Stage{
		core.StageThrowing:     core.StageTrimming,
		core.StageTrimming:     core.StageDrying,
		core.StageDrying:       core.StageBisqueFiring,
		core.StageBisqueFiring: core.StageGlazing,
		core.StageGlazing:      core.StageGlazeFiring,
		core.StageGlazeFiring:  core.StageDecorating,
		core.StageDecorating:   core.StageFinished,
		core.StageFinished:     core.StageFinished,
	}

	for stage, successor := range expected {
		assert.Equal(t, successor, core.Successor(stage), "successor of %s", stage)
	}
}

func TestAdvance_MovesToFixedSuccessor(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, stage := range core.Stages {
		if stage.Terminal() {
			continue
		}
		piece := core.Piece{Title: "vase", CurrentStage: stage}
		advanced := core.Advance(piece, now)
		assert.Equal(t, core.Successor(stage), advanced.CurrentStage)
	}
}

func TestAdvance_TerminalIsNoOp(t *testing.T) {
	now := time.Now()
	piece := core.Piece{
		Title:        "bowl",
		CurrentStage: core.StageFinished,
		StageHistory: []core.StageRecord{{Stage: core.StageDecorating, Date: now}},
	}

	advanced := core.Advance(piece, now)

	assert.Equal(t, core.StageFinished, advanced.CurrentStage)
	assert.Len(t, advanced.StageHistory, 1, "advancing a finished piece must not append")
}

func TestAdvance_HistoryIsAppendOnly(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	piece := core.Piece{Title: "mug", CurrentStage: core.StageThrowing}

	var lengths []int
	for i := 0; i < 7; i++ {
		piece = core.Advance(piece, now.Add(time.Duration(i)*time.Hour))
		lengths = append(lengths, len(piece.StageHistory))
	}

	for i := 1; i < len(lengths); i++ {
		assert.Greater(t, lengths[i], lengths[i-1], "stage history must grow monotonically")
	}

	// Prior entries keep their order: each record holds the stage that was
	// completed when it was appended.
	for i, record := range piece.StageHistory {
		assert.Equal(t, core.Stages[i], record.Stage)
	}
}

func TestAdvance_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	original := core.Piece{
		Title:        "planter",
		CurrentStage: core.StageThrowing,
		StageHistory: []core.StageRecord{},
	}

	_ = core.Advance(original, now)

	assert.Equal(t, core.StageThrowing, original.CurrentStage)
	assert.Empty(t, original.StageHistory)
}

func TestSuggestNextStep_TerminalClearsReminder(t *testing.T) {
	for _, from := range []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Now(),
		time.Now().AddDate(1, 0, 0),
	} {
		suggestion := core.SuggestNextStep(core.StageFinished, from)
		assert.Nil(t, suggestion.NextStep)
		assert.Nil(t, suggestion.NextReminderAt)
	}
}

func TestSuggestNextStep_DryingHasNoAutoReminder(t *testing.T) {
	suggestion := core.SuggestNextStep(core.StageDrying, time.Now())

	require.NotNil(t, suggestion.NextStep)
	assert.Equal(t, "Move to Bisque Firing", *suggestion.NextStep)
	assert.Nil(t, suggestion.NextReminderAt, "drying duration is subjective; no default due date")
}

func TestSuggestNextStep_LeadTimeInWholeDays(t *testing.T) {
	from := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

	suggestion := core.SuggestNextStep(core.StageBisqueFiring, from)
	require.NotNil(t, suggestion.NextStep)
	assert.Equal(t, "Move to Glazing", *suggestion.NextStep)
	require.NotNil(t, suggestion.NextReminderAt)
	assert.Equal(t, from.AddDate(0, 0, 2), *suggestion.NextReminderAt)
}

func TestAdvance_ThrowingScenario(t *testing.T) {
	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	piece := core.Piece{Title: "pitcher", CurrentStage: core.StageThrowing}

	piece = core.Advance(piece, now)
	assert.Equal(t, core.StageTrimming, piece.CurrentStage)

	piece = core.Advance(piece, now.Add(time.Hour))
	assert.Equal(t, core.StageDrying, piece.CurrentStage)
	assert.Nil(t, piece.NextReminderAt, "landing on drying must leave the reminder unset")

	piece = core.Advance(piece, now.Add(2*time.Hour))
	assert.Equal(t, core.StageBisqueFiring, piece.CurrentStage)

	require.Len(t, piece.StageHistory, 3)
	assert.Equal(t, core.StageThrowing, piece.StageHistory[0].Stage)
	assert.Equal(t, core.StageTrimming, piece.StageHistory[1].Stage)
	assert.Equal(t, core.StageDrying, piece.StageHistory[2].Stage)
}

func TestParseStage(t *testing.T) {
	stage, err := core.ParseStage("bisque_firing")
	require.NoError(t, err)
	assert.Equal(t, core.StageBisqueFiring, stage)

	_, err = core.ParseStage("leather_hard")
	assert.Error(t, err)
}
