package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// tracerName is the default OTel tracer name for the orchestrator package,
// matching the teacher's "codefang" convention of one tracer name per
// package rather than per call site.
const tracerName = "codeintel-orchestrator"

// ErrorKind classifies a stage failure for reporting (spec.md §7).
type ErrorKind int

// Recognized error kinds.
const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindStageFailed
	ErrorKindSkippedDependency
)

// StageError records one stage's failure or skip, with its kind and the
// underlying cause (nil for a skip).
type StageError struct {
	Stage StageID
	Kind  ErrorKind
	Cause error
}

func (e StageError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("orchestrator: stage %q skipped (dependency failed)", e.Stage)
	}

	return fmt.Sprintf("orchestrator: stage %q failed: %v", e.Stage, e.Cause)
}

// StageTiming records how long one stage took to run.
type StageTiming struct {
	Stage    StageID
	Duration time.Duration
}

// Result aggregates a full run: per-stage completion, timing, and errors.
// A stage absent from both Completed and Errors never became ready (its
// dependency chain never resolved, which Plan would already have caught).
type Result struct {
	Completed map[StageID]bool
	Errors    []StageError
	Timings   []StageTiming
}

// CoreFraction is the default share of runtime.NumCPU() the work-stealing
// pool sizes itself to, matching spec.md §4.I's "configurable fraction of
// available cores (default 75%)".
const CoreFraction = 0.75

// PoolSize returns max(1, floor(fraction * NumCPU())).
func PoolSize(fraction float64) int {
	if fraction <= 0 {
		fraction = CoreFraction
	}

	n := int(fraction * float64(runtime.NumCPU()))
	if n < 1 {
		n = 1
	}

	return n
}

// RunOptions configures one Run call.
type RunOptions struct {
	// Enabled is the stage subset to execute. Nil means "every stage in the DAG".
	Enabled []StageID
	// CoreFraction overrides CoreFraction for this run; <= 0 uses the default.
	CoreFraction float64
	// Tracer overrides the default OTel tracer.
	Tracer trace.Tracer
}

func (d *DAG) tracer(opts RunOptions) trace.Tracer {
	if opts.Tracer != nil {
		return opts.Tracer
	}

	return otel.Tracer(tracerName)
}

// Run executes the DAG's stages over snapshot using a work-stealing pool
// bounded to PoolSize(opts.CoreFraction) concurrent stages. Independent
// subgraphs execute concurrently; a failed stage marks its transitive
// dependents as skipped while unrelated subgraphs proceed to completion.
// There is no stage-level retry: a stage that fails stays failed for the
// rest of the run.
func (d *DAG) Run(ctx context.Context, snapshot *Snapshot, opts RunOptions) (*Result, error) {
	enabled := opts.Enabled
	if enabled == nil {
		enabled = d.order
	}

	plan, err := d.Plan(enabled)
	if err != nil {
		return nil, err
	}

	enabledSet := make(map[StageID]bool, len(enabled))
	for _, id := range enabled {
		enabledSet[id] = true
	}

	tr := d.tracer(opts)
	ctx, span := tr.Start(ctx, "orchestrator.run", trace.WithAttributes(attribute.Int("stage.count", len(plan))))
	defer span.End()

	pctx := NewContext(snapshot)
	sem := semaphore.NewWeighted(int64(PoolSize(opts.CoreFraction)))

	var (
		mu        sync.Mutex
		completed = make(map[StageID]bool, len(plan))
		failed    = make(map[StageID]bool, len(plan))
		result    = &Result{Completed: make(map[StageID]bool, len(plan))}
	)

	remaining := make(map[StageID]bool, len(plan))
	for _, id := range plan {
		remaining[id] = true
	}

	for len(remaining) > 0 {
		mu.Lock()
		completedCopy := make(map[StageID]bool, len(completed))
		for k, v := range completed {
			completedCopy[k] = v
		}
		remainingIDs := stageIDSliceFromSet(remaining)
		mu.Unlock()

		ready := d.ParallelReady(remainingIDs, completedCopy)
		if len(ready) == 0 {
			// Every remaining stage depends (directly or transitively) on a
			// failed stage: mark them all skipped and stop.
			for id := range remaining {
				result.Errors = append(result.Errors, StageError{Stage: id, Kind: ErrorKindSkippedDependency})
			}

			break
		}

		g, gctx := errgroup.WithContext(ctx)

		for _, id := range ready {
			id := id
			stage := d.stages[id]

			mu.Lock()
			delete(remaining, id)
			mu.Unlock()

			g.Go(func() error {
				if acqErr := sem.Acquire(gctx, 1); acqErr != nil {
					return acqErr
				}
				defer sem.Release(1)

				start := time.Now()

				_, stageSpan := tr.Start(gctx, "orchestrator.stage."+string(id))
				runErr := stage.Run(pctx)
				stageSpan.End()

				duration := time.Since(start)

				mu.Lock()
				result.Timings = append(result.Timings, StageTiming{Stage: id, Duration: duration})

				if runErr != nil {
					failed[id] = true
					result.Errors = append(result.Errors, StageError{Stage: id, Kind: ErrorKindStageFailed, Cause: runErr})
				} else {
					completed[id] = true
					result.Completed[id] = true
				}
				mu.Unlock()

				return nil
			})
		}

		if waitErr := g.Wait(); waitErr != nil {
			return result, waitErr
		}
	}

	return result, nil
}

func stageIDSliceFromSet(set map[StageID]bool) []StageID {
	out := make([]StageID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}

	return out
}
