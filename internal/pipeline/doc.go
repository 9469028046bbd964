// Package pipeline provides the staged execution model shared by the
// three binaries. A Runner executes registered stages sequentially,
// tracking per-stage lifecycle state (pending, active, completed,
// failed, skipped), wrapping each stage in an OpenTelemetry span, and
// recording stage metrics.
//
// Stages are deliberately sequential: every stage reads the previous
// stage's output, and a failure aborts the run with the remaining
// stages marked skipped.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger).
//	    WithTracer(providers.Tracer).
//	    WithMetrics(metrics)
//
//	runner.AddStage(pipeline.NewStageFunc("load", "Load dataset", loadFn))
//	runner.AddStage(pipeline.NewStageFunc("clean", "Recode categories", cleanFn))
//
//	state, err := runner.Run(ctx, runID)
package pipeline
