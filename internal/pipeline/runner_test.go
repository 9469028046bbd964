package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunAllStages(t *testing.T) {
	var executed []string

	runner := NewRunner(nil).
		AddStage(NewStageFunc("load", "Load", func(ctx context.Context, state *RunState) error {
			executed = append(executed, "load")
			state.GetStage("load").SetRowsOut(1794)
			return nil
		})).
		AddStage(NewStageFunc("clean", "Clean", func(ctx context.Context, state *RunState) error {
			executed = append(executed, "clean")
			return nil
		})).
		AddStage(NewStageFunc("export", "Export", func(ctx context.Context, state *RunState) error {
			executed = append(executed, "export")
			return nil
		}))

	state, err := runner.Run(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"load", "clean", "export"}, executed)
	assert.Equal(t, RunStatusCompleted, state.CurrentStatus())
	assert.Equal(t, "run-1", state.ID)
	require.NotNil(t, state.EndTime)

	for _, stageState := range state.StageStates() {
		assert.Equal(t, StageStatusCompleted, stageState.CurrentStatus())
	}
	assert.Equal(t, int64(1794), state.GetStage("load").RowsOut)
}

func TestRunner_GeneratesRunID(t *testing.T) {
	runner := NewRunner(nil).
		AddStage(NewStageFunc("noop", "Noop", func(ctx context.Context, state *RunState) error {
			return nil
		}))

	state, err := runner.Run(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
}

func TestRunner_FailureSkipsRemaining(t *testing.T) {
	stageErr := errors.New("download failed")
	var executed []string

	runner := NewRunner(nil).
		AddStage(NewStageFunc("load", "Load", func(ctx context.Context, state *RunState) error {
			executed = append(executed, "load")
			return nil
		})).
		AddStage(NewStageFunc("clean", "Clean", func(ctx context.Context, state *RunState) error {
			executed = append(executed, "clean")
			return stageErr
		})).
		AddStage(NewStageFunc("export", "Export", func(ctx context.Context, state *RunState) error {
			executed = append(executed, "export")
			return nil
		}))

	state, err := runner.Run(context.Background(), "run-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, stageErr)
	assert.Contains(t, err.Error(), "stage clean failed")

	// The failing stage ran, the one after it never did
	assert.Equal(t, []string{"load", "clean"}, executed)

	assert.Equal(t, RunStatusFailed, state.CurrentStatus())
	assert.Equal(t, StageStatusCompleted, state.GetStage("load").CurrentStatus())
	assert.Equal(t, StageStatusFailed, state.GetStage("clean").CurrentStatus())
	assert.Equal(t, StageStatusSkipped, state.GetStage("export").CurrentStatus())
	assert.Contains(t, state.GetStage("export").Message, "clean")
}

func TestRunner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := NewRunner(nil).
		AddStage(NewStageFunc("load", "Load", func(ctx context.Context, state *RunState) error {
			cancel() // Cancel while the first stage runs
			return nil
		})).
		AddStage(NewStageFunc("clean", "Clean", func(ctx context.Context, state *RunState) error {
			t.Fatal("stage after cancellation must not run")
			return nil
		}))

	state, err := runner.Run(ctx, "run-3")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, RunStatusCancelled, state.CurrentStatus())
	assert.Equal(t, StageStatusSkipped, state.GetStage("clean").CurrentStatus())
}

func TestRunner_StateOrdering(t *testing.T) {
	runner := NewRunner(nil).
		AddStage(NewStageFunc("c", "Third", func(ctx context.Context, state *RunState) error { return nil })).
		AddStage(NewStageFunc("a", "First", func(ctx context.Context, state *RunState) error { return nil })).
		AddStage(NewStageFunc("b", "Second", func(ctx context.Context, state *RunState) error { return nil }))

	state, err := runner.Run(context.Background(), "run-4")
	require.NoError(t, err)

	var ids []string
	for _, stageState := range state.StageStates() {
		ids = append(ids, stageState.ID)
	}
	// Registration order wins, not lexical order
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}
