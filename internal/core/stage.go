package core

import (
	"fmt"
	"time"
)

// Stage is one phase of pottery production. The enum is totally ordered;
// the order only drives next-stage defaults, a caller may still set any
// stage directly as a manual override.
type Stage string

const (
	StageThrowing     Stage = "throwing"
	StageTrimming     Stage = "trimming"
	StageDrying       Stage = "drying"
	StageBisqueFiring Stage = "bisque_firing"
	StageGlazing      Stage = "glazing"
	StageGlazeFiring  Stage = "glaze_firing"
	StageDecorating   Stage = "decorating"
	StageFinished     Stage = "finished"
)

// Stages lists every stage in production order.
var Stages = []Stage{
	StageThrowing,
	StageTrimming,
	StageDrying,
	StageBisqueFiring,
	StageGlazing,
	StageGlazeFiring,
	StageDecorating,
	StageFinished,
}

var successors = map[Stage]Stage{
	StageThrowing:     StageTrimming,
	StageTrimming:     StageDrying,
	StageDrying:       StageBisqueFiring,
	StageBisqueFiring: StageGlazing,
	StageGlazing:      StageGlazeFiring,
	StageGlazeFiring:  StageDecorating,
	StageDecorating:   StageFinished,
	StageFinished:     StageFinished,
}

var stageLabels = map[Stage]string{
	StageThrowing:     "Throwing",
	StageTrimming:     "Trimming",
	StageDrying:       "Drying",
	StageBisqueFiring: "Bisque Firing",
	StageGlazing:      "Glazing",
	StageGlazeFiring:  "Glaze Firing",
	StageDecorating:   "Decorating",
	StageFinished:     "Finished",
}

// reminderLeadDays holds the default lead time, in whole days, before the
// suggested next step comes due. Drying is deliberately absent: how long a
// piece needs to dry is subjective, so its due date is always left unset.
var reminderLeadDays = map[Stage]int{
	StageThrowing:     1,
	StageTrimming:     1,
	StageBisqueFiring: 2,
	StageGlazing:      1,
	StageGlazeFiring:  2,
	StageDecorating:   1,
}

// ParseStage validates a stage string from an external caller.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.Valid() {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return stage, nil
}

func (s Stage) Valid() bool {
	_, ok := successors[s]
	return ok
}

// Terminal reports whether s is the finished stage, the unique state with
// no outbound transition.
func (s Stage) Terminal() bool {
	return s == StageFinished
}

// Label returns the display name for s.
func (s Stage) Label() string {
	return stageLabels[s]
}

// Successor returns the fixed next stage for s. The terminal stage is its
// own successor.
func Successor(s Stage) Stage {
	return successors[s]
}

// Suggestion is the recommended follow-up for a stage. A nil NextReminderAt
// means no reminder is due; the terminal stage clears both fields.
type Suggestion struct {
	NextStep       *string
	NextReminderAt *time.Time
}

// SuggestNextStep returns the default follow-up action and reminder due
// date for a piece sitting in the given stage, relative to from.
func SuggestNextStep(s Stage, from time.Time) Suggestion {
	if s.Terminal() {
		return Suggestion{}
	}

	step := "Move to " + stageLabels[Successor(s)]
	suggestion := Suggestion{NextStep: &step}

	if days, ok := reminderLeadDays[s]; ok {
		due := from.AddDate(0, 0, days)
		suggestion.NextReminderAt = &due
	}

	return suggestion
}

// Advance moves a piece to the successor of its current stage: the stage
// just completed is appended to the stage history and the next-step
// suggestion is recomputed from now. Advancing a finished piece is a full
// no-op; nothing is appended. The input piece is not mutated.
func Advance(p Piece, now time.Time) Piece {
	if p.CurrentStage.Terminal() {
		return p
	}

	history := make([]StageRecord, len(p.StageHistory), len(p.StageHistory)+1)
	copy(history, p.StageHistory)
	p.StageHistory = append(history, StageRecord{Stage: p.CurrentStage, Date: now})

	p.CurrentStage = Successor(p.CurrentStage)

	suggestion := SuggestNextStep(p.CurrentStage, now)
	p.NextStep = suggestion.NextStep
	p.NextReminderAt = suggestion.NextReminderAt

	return p
}
