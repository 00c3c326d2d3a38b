package merge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/a3tai/mcp-pdf-merger/internal/pdf"
)

// Merger executes a resolved merge request
type Merger interface {
	PDFMerge(ctx context.Context, req pdf.PDFMergeRequest, progress pdf.ProgressFunc) (*pdf.PDFMergeResult, error)
}

// Progress is one per-file progress update during a running merge
type Progress struct {
	JobID     string
	FileIndex int
	FileCount int
	Path      string
	Percent   int
}

// Outcome is the single terminal result of a merge job
type Outcome struct {
	JobID  string
	Result *pdf.PDFMergeResult
	Err    error
}

// Job is one in-flight merge. Its Outcome channel delivers exactly one
// value and is then closed.
type Job struct {
	ID         string
	OutputPath string
	Outcome    <-chan Outcome
}

// Runner executes merges off the interaction thread. At most one merge
// may be in flight per output path; a Start for a busy output path is
// rejected instead of queued, so a double-triggered merge cannot race
// its twin on the same file.
type Runner struct {
	merger  Merger
	counter PageCounter

	mu       sync.Mutex
	inflight map[string]string // output path -> job ID
}

// NewRunner creates a runner backed by the given merger and page counter
func NewRunner(merger Merger, counter PageCounter) *Runner {
	return &Runner{
		merger:   merger,
		counter:  counter,
		inflight: make(map[string]string),
	}
}

// ErrMergeInFlight is returned when a merge for the same output path is
// already running
var ErrMergeInFlight = fmt.Errorf("a merge for this output path is already in flight")

// Start resolves the plan and launches the merge on a background
// goroutine. Resolution happens before the job is accepted, so every
// selection error is reported synchronously and atomically: either the
// whole plan is valid or nothing runs. Exactly one Outcome is delivered
// on the returned job's channel.
func (r *Runner) Start(ctx context.Context, plan Plan, onProgress func(Progress)) (*Job, error) {
	resolved, err := Resolve(plan, r.counter)
	if err != nil {
		return nil, err
	}

	// The in-flight map keys on the canonical output spelling, so
	// "/docs/out" and "/docs/out.pdf" cannot run against the same file
	outputPath, err := pdf.NormalizeOutputPath(resolved.OutputPath)
	if err != nil {
		return nil, err
	}
	resolved.OutputPath = outputPath

	jobID := uuid.NewString()

	r.mu.Lock()
	if running, busy := r.inflight[resolved.OutputPath]; busy {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w (job %s)", ErrMergeInFlight, running)
	}
	r.inflight[resolved.OutputPath] = jobID
	r.mu.Unlock()

	outcome := make(chan Outcome, 1)
	job := &Job{
		ID:         jobID,
		OutputPath: resolved.OutputPath,
		Outcome:    outcome,
	}

	log.Info().
		Str("job_id", jobID).
		Int("files", len(resolved.Items)).
		Int("pages", resolved.TotalPages).
		Str("output", resolved.OutputPath).
		Msg("merge started")

	go r.run(ctx, jobID, resolved, outcome, onProgress)

	return job, nil
}

// Run executes a merge synchronously, with the same single-flight
// guarantee as Start
func (r *Runner) Run(ctx context.Context, plan Plan, onProgress func(Progress)) (*pdf.PDFMergeResult, error) {
	job, err := r.Start(ctx, plan, onProgress)
	if err != nil {
		return nil, err
	}

	outcome := <-job.Outcome
	return outcome.Result, outcome.Err
}

func (r *Runner) run(ctx context.Context, jobID string, resolved *ResolvedPlan, outcome chan<- Outcome, onProgress func(Progress)) {
	defer func() {
		r.mu.Lock()
		delete(r.inflight, resolved.OutputPath)
		r.mu.Unlock()
	}()

	var progress pdf.ProgressFunc
	if onProgress != nil {
		progress = func(fileIndex, fileCount int, path string) {
			onProgress(Progress{
				JobID:     jobID,
				FileIndex: fileIndex,
				FileCount: fileCount,
				Path:      path,
				Percent:   fileIndex * 100 / fileCount,
			})
		}
	}

	result, err := r.merger.PDFMerge(ctx, resolved.MergeRequest(), progress)
	if err != nil {
		log.Error().Str("job_id", jobID).Err(err).Msg("merge failed")
	} else {
		log.Info().
			Str("job_id", jobID).
			Str("output", result.OutputPath).
			Int("pages", result.PageCount).
			Int64("elapsed_msec", result.ElapsedMsec).
			Msg("merge completed")
		if onProgress != nil {
			onProgress(Progress{
				JobID:     jobID,
				FileIndex: len(resolved.Items),
				FileCount: len(resolved.Items),
				Percent:   100,
			})
		}
	}

	outcome <- Outcome{JobID: jobID, Result: result, Err: err}
	close(outcome)
}

// InFlight reports whether a merge for outputPath is currently running
func (r *Runner) InFlight(outputPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.inflight[outputPath]
	return busy
}
