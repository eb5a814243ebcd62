package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/declscan/internal/pipeline"
)

func watchCommand(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()
	if !s.target.IsDir {
		return fmt.Errorf("watch needs a directory, %s is a file", s.target.Path)
	}

	debounce := s.cfg.Scan.WatchDebounce()
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}

	// watches go in before the initial scan so no change in between is lost
	w, err := pipeline.NewWatcher(s.cfg.Project.Root, s.scanner.Exclude, debounce, s.logger)
	if err != nil {
		return err
	}

	if _, err := s.run(c.Context, s.scanner.Paths(c.Context)); err != nil && !errors.Is(err, pipeline.ErrRunAborted) {
		w.Close()
		return err
	}
	s.logger.Info(fmt.Sprintf("watching %s for changes", s.cfg.Project.Root))

	return w.Run(c.Context, s.rescan)
}

// rescan reruns the pipeline over the created and modified files of one batch
func (s *session) rescan(ctx context.Context, events []pipeline.FileEvent) {
	var changed []string
	for _, e := range events {
		if e.Type == pipeline.FileEventRemove {
			fmt.Fprintf(s.out, "%s: removed\n", s.display(e.Path))
			continue
		}
		changed = append(changed, e.Path)
	}
	if len(changed) == 0 {
		return
	}

	if _, err := s.run(ctx, slices.Values(changed)); err != nil && !errors.Is(err, pipeline.ErrRunAborted) && ctx.Err() == nil {
		s.logger.Warning(fmt.Sprintf("rescan failed: %v", err))
	}
}
