package models

import (
	"fmt"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
)

// PipelineState is a step of one deployment impact analysis.
type PipelineState int

const (
	StateNotStarted PipelineState = iota
	StateDiffEmpty
	StatePredicted
	StateExhausted
	StatePublishFailed
	StateCompleted
)

func (s PipelineState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateDiffEmpty:
		return "diff_empty"
	case StatePredicted:
		return "predicted"
	case StateExhausted:
		return "exhausted"
	case StatePublishFailed:
		return "publish_failed"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[PipelineState][]PipelineState{
	StateNotStarted:    {StateDiffEmpty, StatePredicted, StateExhausted, StateCompleted},
	StateDiffEmpty:     {StateCompleted},
	StatePredicted:     {StatePublishFailed, StateCompleted},
	StateExhausted:     {StateCompleted},
	StatePublishFailed: {StateCompleted},
}

// CanTransition reports whether the pipeline may move from one state to the
// other. Moves are forward only.
func CanTransition(from, to PipelineState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AnalyzeOptions tunes one analysis call.
type AnalyzeOptions struct {
	// CLIMode writes the report to the configured output when it is not published.
	CLIMode bool
	// Publish overrides config.publish_output when set.
	Publish *bool
}

// Outcome is what an analysis returns to its caller.
type Outcome struct {
	States    []PipelineState
	Report    string
	Model     string
	Published bool
}

func NewOutcome() *Outcome {
	return &Outcome{States: []PipelineState{StateNotStarted}}
}

// State is the latest state reached.
func (o *Outcome) State() PipelineState {
	return o.States[len(o.States)-1]
}

// Advance records a transition, rejecting moves the state machine forbids.
func (o *Outcome) Advance(to PipelineState) error {
	from := o.State()
	if !CanTransition(from, to) {
		return apperrors.ErrInvalidTransition.WithContext("detail", fmt.Sprintf("%s -> %s", from, to))
	}
	o.States = append(o.States, to)
	return nil
}

// Reached reports whether the analysis passed through state.
func (o *Outcome) Reached(state PipelineState) bool {
	for _, s := range o.States {
		if s == state {
			return true
		}
	}
	return false
}
