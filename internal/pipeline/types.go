// Package pipeline runs the filter chain, the parser front end and caller extraction
// logic over a stream of candidate files with a bounded worker pool.
package pipeline

import (
	"errors"
	"time"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/filter"
)

// Outcome is the result of evaluating a FileTask: ShouldProcess or Skip.
type Outcome interface {
	outcome()
	FilePath() string
}

// ShouldProcess carries the exact bytes the content filters accepted, so later stages
// never read the file a second time.
type ShouldProcess struct {
	Path    string
	Content []byte
	Digest  uint64 // xxhash of Content
}

// Skip records which filter rejected the file. A skip is not an error.
type Skip struct {
	Path   string
	Reason filter.Rejection
}

func (ShouldProcess) outcome() {}
func (Skip) outcome()          {}

func (o ShouldProcess) FilePath() string { return o.Path }
func (o Skip) FilePath() string          { return o.Path }

// FailurePolicy decides what a per-file failure does to the rest of the run
type FailurePolicy int

const (
	// BestEffort records failures and keeps going
	BestEffort FailurePolicy = iota
	// FailFast stops dispatching new files after the first failure
	FailFast
)

func (p FailurePolicy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "best-effort"
}

// Status of one file in a run
type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult is what the aggregator records for each dispatched path
type FileResult[T any] struct {
	Path     string
	Status   Status
	Value    T                 // set when Status is StatusProcessed
	Skip     *filter.Rejection // set when Status is StatusSkipped
	Err      error             // set when Status is StatusFailed
	Stage    declerrors.Stage
	Digest   uint64
	Duration time.Duration
}

// Summary counts a run's files by status, failures split by stage
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	ByStage   map[declerrors.Stage]int
	Duration  time.Duration
}

// Total is the number of files that reached a terminal status
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

func (s *Summary) add(status Status, stage declerrors.Stage) {
	switch status {
	case StatusProcessed:
		s.Processed++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
		if s.ByStage == nil {
			s.ByStage = make(map[declerrors.Stage]int)
		}
		s.ByStage[stage]++
	}
}

// RunResult holds every file result and the batch summary
type RunResult[T any] struct {
	Files   []FileResult[T]
	Summary Summary
}

// Failures returns the failed results in recorded order
func (r *RunResult[T]) Failures() []FileResult[T] {
	var out []FileResult[T]
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			out = append(out, f)
		}
	}
	return out
}

// Err joins the per-file failures into a MultiError, nil when none failed
func (r *RunResult[T]) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f.Err)
	}
	return declerrors.NewMultiError(errs)
}

// ErrRunAborted is returned by fail-fast runs that stopped early
var ErrRunAborted = errors.New("run aborted after first failure")
