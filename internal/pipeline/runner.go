package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bechdelcli/internal/infrastructure"
)

// Runner executes stages sequentially. A stage failure aborts the run
// and marks every remaining stage skipped; there is no retry, since
// every stage reads the previous stage's output.
type Runner struct {
	stages  []Stage
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	runtime *infrastructure.RuntimeMetrics
}

// NewRunner creates a runner with no stages registered
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// WithTracer attaches a tracer so each stage runs inside its own span
func (r *Runner) WithTracer(tracer trace.Tracer) *Runner {
	r.tracer = tracer
	return r
}

// WithMetrics attaches pipeline metrics for stage instrumentation
func (r *Runner) WithMetrics(metrics *infrastructure.PipelineMetrics) *Runner {
	r.metrics = metrics
	return r
}

// WithRuntimeMetrics attaches a runtime recorder sampled after each stage
func (r *Runner) WithRuntimeMetrics(runtime *infrastructure.RuntimeMetrics) *Runner {
	r.runtime = runtime
	return r
}

// AddStage appends a stage to the run order
func (r *Runner) AddStage(stage Stage) *Runner {
	r.stages = append(r.stages, stage)
	return r
}

// Run executes every registered stage in order. An empty runID gets a
// generated one. The returned state is complete even on failure, so
// callers can report partial progress.
func (r *Runner) Run(ctx context.Context, runID string) (*RunState, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	state := NewRunState(runID)
	for _, stage := range r.stages {
		state.SetStage(stage.ID(), NewStageState(stage.ID(), stage.Name()))
	}
	state.Start()

	r.logger.InfoContext(ctx, "run_started",
		slog.String("run_id", runID),
		slog.Int("stage_count", len(r.stages)))

	for i, stage := range r.stages {
		select {
		case <-ctx.Done():
			r.logger.WarnContext(ctx, "run_cancelled",
				slog.String("run_id", runID),
				slog.String("stage", stage.ID()))
			r.skipRemaining(state, i, "run cancelled")
			state.Cancel()
			return state, ctx.Err()
		default:
		}

		r.logger.InfoContext(ctx, "executing_stage",
			slog.String("run_id", runID),
			slog.String("stage", stage.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(r.stages)))

		err := r.executeStage(ctx, state, stage)

		// Sample runtime stats at the stage boundary so the recorded
		// figures line up with the stage logs
		if r.runtime != nil {
			stats := r.runtime.Collect(ctx, state.StartTime)
			r.logger.DebugContext(ctx, "runtime_sample",
				slog.String("run_id", runID),
				slog.String("stage", stage.ID()),
				slog.Any("stats", stats.FormatStats()))
		}

		if err != nil {
			r.skipRemaining(state, i+1, fmt.Sprintf("previous stage %s failed", stage.ID()))
			state.Fail(err)
			return state, fmt.Errorf("stage %s failed: %w", stage.ID(), err)
		}
	}

	state.Complete()
	r.logger.InfoContext(ctx, "run_completed",
		slog.String("run_id", runID),
		slog.Duration("duration", state.Duration()))
	return state, nil
}

// executeStage runs a single stage inside its own span
func (r *Runner) executeStage(ctx context.Context, state *RunState, stage Stage) error {
	stageState := state.GetStage(stage.ID())

	stageCtx := ctx
	var span trace.Span
	if r.tracer != nil {
		stageCtx, span = r.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stage.ID()),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("run.id", state.ID),
				attribute.String("stage.id", stage.ID()),
				attribute.String("stage.name", stage.Name()),
			),
		)
		defer span.End()
	}

	infrastructure.RecordActiveStageChange(stageCtx, r.metrics, 1, stage.ID())
	defer infrastructure.RecordActiveStageChange(stageCtx, r.metrics, -1, stage.ID())

	stageState.Start()
	startTime := time.Now()
	err := stage.Execute(stageCtx, state)
	duration := time.Since(startTime)

	if err != nil {
		stageState.Fail(err)
		infrastructure.RecordStageMetrics(stageCtx, r.metrics, stage.ID(), duration, 0, false, err)
		infrastructure.RecordError(stageCtx, err)

		r.logger.ErrorContext(ctx, "stage_execution_failed",
			slog.String("run_id", state.ID),
			slog.String("stage", stage.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))

		// Log stage metadata for debugging
		if len(stageState.Metadata) > 0 {
			if metaJSON, marshalErr := json.Marshal(stageState.Metadata); marshalErr == nil {
				r.logger.ErrorContext(ctx, "stage_metadata",
					slog.String("run_id", state.ID),
					slog.String("stage", stage.ID()),
					slog.String("metadata", string(metaJSON)))
			}
		}
		return err
	}

	stageState.Complete()
	infrastructure.RecordStageMetrics(stageCtx, r.metrics, stage.ID(), duration, stageState.RowsOut, true, nil)

	r.logger.InfoContext(ctx, "stage_completed",
		slog.String("run_id", state.ID),
		slog.String("stage", stage.ID()),
		slog.Duration("duration", duration),
		slog.Int64("rows_out", stageState.RowsOut))
	return nil
}

// skipRemaining marks every stage from index on as skipped
func (r *Runner) skipRemaining(state *RunState, from int, reason string) {
	for _, stage := range r.stages[from:] {
		stageState := state.GetStage(stage.ID())
		if stageState.CurrentStatus() == StageStatusPending {
			stageState.Skip(reason)
		}
	}
}
