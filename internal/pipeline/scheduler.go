package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/filter"
	"github.com/standardbeagle/declscan/internal/logging"
)

// Options configure a Scheduler
type Options[T any] struct {
	Workers     int
	Policy      FailurePolicy
	Ordered     bool          // emit results in input order instead of completion order
	FileTimeout time.Duration // 0 disables the per-file timeout
	Read        ReadFunc      // defaults to os.ReadFile

	// OnResult is called from the aggregating goroutine for every recorded result,
	// in the order results are recorded
	OnResult func(FileResult[T])
}

// Scheduler fans candidate paths out to a fixed pool of workers. Each worker runs
// filter -> read -> filter -> parse -> extract for one file at a time and sends the
// result to a single aggregator, so no result state is shared between workers.
type Scheduler[T any] struct {
	chain  *filter.Chain
	driver *Driver[T]
	opts   Options[T]
	logger *logging.Logger
}

// NewScheduler validates its collaborators; a nil logger uses the process-wide one.
func NewScheduler[T any](chain *filter.Chain, driver *Driver[T], opts Options[T], logger *logging.Logger) (*Scheduler[T], error) {
	if opts.Workers < 1 {
		return nil, declerrors.NewConfigError("workers", strconv.Itoa(opts.Workers), errors.New("at least one worker is required"))
	}
	if chain == nil {
		return nil, declerrors.NewConfigError("chain", "", errors.New("filter chain is required"))
	}
	if driver == nil || driver.Parser == nil {
		return nil, declerrors.NewConfigError("parser", "", errors.New("parser is required"))
	}
	if driver.Extract == nil {
		return nil, declerrors.NewConfigError("extract", "", errors.New("extraction logic is required"))
	}
	if opts.FileTimeout < 0 {
		return nil, declerrors.NewConfigError("file_timeout", opts.FileTimeout.String(), errors.New("timeout cannot be negative"))
	}
	return &Scheduler[T]{
		chain:  chain,
		driver: driver,
		opts:   opts,
		logger: logging.OrDefault(logger),
	}, nil
}

var errStopDispatch = errors.New("dispatch stopped after a failed file")

type job struct {
	seq  int
	path string
}

type message[T any] struct {
	seq         int
	result      FileResult[T]
	interrupted bool // the run was canceled before this file finished
}

// Run processes every path yielded by paths at most once. Per-file failures are
// recorded, not returned. The error is ErrRunAborted after a fail-fast stop, the
// context error after cancellation, nil otherwise; results are returned in every case.
func (s *Scheduler[T]) Run(ctx context.Context, paths iter.Seq[string]) (*RunResult[T], error) {
	start := time.Now()

	// a worker returning errStopDispatch cancels dispatchCtx, which stops handing out
	// new files; in-flight files only observe ctx
	g, dispatchCtx := errgroup.WithContext(ctx)

	jobs := make(chan job)
	messages := make(chan message[T], s.opts.Workers)

	g.Go(func() error {
		defer close(jobs)
		s.dispatch(dispatchCtx, paths, jobs)
		return nil
	})
	for range s.opts.Workers {
		g.Go(func() error {
			for j := range jobs {
				// a job received after the stop is dropped, not processed
				if dispatchCtx.Err() != nil {
					messages <- message[T]{seq: j.seq, interrupted: true}
					continue
				}
				msg := s.process(ctx, j)
				messages <- msg
				if s.opts.Policy == FailFast && msg.result.Status == StatusFailed {
					return errStopDispatch
				}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(messages)
	}()

	result := &RunResult[T]{}
	aborted := false
	record := func(m message[T]) {
		if m.interrupted {
			return
		}
		result.Files = append(result.Files, m.result)
		result.Summary.add(m.result.Status, m.result.Stage)
		if m.result.Status == StatusFailed && s.opts.Policy == FailFast {
			aborted = true
		}
		if s.opts.OnResult != nil {
			s.opts.OnResult(m.result)
		}
	}

	// ordered mode holds results until every earlier sequence number has arrived
	pending := make(map[int]message[T])
	next := 0
	for m := range messages {
		if !s.opts.Ordered {
			record(m)
			continue
		}
		pending[m.seq] = m
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			record(ready)
			next++
		}
	}

	result.Summary.Duration = time.Since(start)
	s.logSummary(result.Summary)

	switch {
	case aborted:
		return result, ErrRunAborted
	case ctx.Err() != nil:
		return result, ctx.Err()
	}
	return result, nil
}

// dispatch hands each distinct cleaned path to a worker exactly once
func (s *Scheduler[T]) dispatch(ctx context.Context, paths iter.Seq[string], jobs chan<- job) {
	seen := make(map[uint64][]string)
	seq := 0
	for p := range paths {
		if ctx.Err() != nil {
			return
		}
		clean := filepath.Clean(p)
		key := xxhash.Sum64String(clean)
		if slices.Contains(seen[key], clean) {
			s.logger.Debug("duplicate path ignored", logging.Path(clean))
			continue
		}
		seen[key] = append(seen[key], clean)

		select {
		case jobs <- job{seq: seq, path: clean}:
			seq++
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler[T]) process(ctx context.Context, j job) message[T] {
	start := time.Now()
	res := FileResult[T]{Path: j.path}

	fileCtx := ctx
	if s.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, s.opts.FileTimeout)
		defer cancel()
	}

	outcome, err := NewFileTask(j.path).Execute(fileCtx, s.chain, s.opts.Read)
	if err == nil {
		switch o := outcome.(type) {
		case Skip:
			res.Status = StatusSkipped
			res.Skip = &o.Reason
			s.logger.Debug(fmt.Sprintf("skipped by %s", o.Reason), logging.Path(j.path))
		case ShouldProcess:
			res.Digest = o.Digest
			res.Value, err = s.driver.Run(fileCtx, j.path, o.Content)
		}
	}
	res.Duration = time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return message[T]{seq: j.seq, interrupted: true}
		}
		if errors.Is(fileCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", declerrors.ErrFileTimeout, s.opts.FileTimeout, context.DeadlineExceeded)
		}
		res.Status = StatusFailed
		res.Err = err
		res.Stage = declerrors.StageOf(err)
		s.logger.Warning(fmt.Sprintf("%s failed: %v", res.Stage, err), logging.Path(j.path))
	} else if res.Status == "" {
		res.Status = StatusProcessed
		s.logger.Debug("processed", logging.Path(j.path))
	}

	return message[T]{seq: j.seq, result: res}
}

func (s *Scheduler[T]) logSummary(sum Summary) {
	msg := fmt.Sprintf("scanned %d files in %s: %d processed, %d skipped, %d failed",
		sum.Total(), sum.Duration.Round(time.Millisecond), sum.Processed, sum.Skipped, sum.Failed)
	if sum.Failed > 0 {
		msg += " (" + formatStages(sum.ByStage) + ")"
	}
	s.logger.Info(msg)
}

func formatStages(byStage map[declerrors.Stage]int) string {
	stages := []declerrors.Stage{declerrors.StageRead, declerrors.StageParse, declerrors.StageExtract, declerrors.StageTimeout}
	out := ""
	for _, stage := range stages {
		if n := byStage[stage]; n > 0 {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%s: %d", stage, n)
		}
	}
	return out
}
