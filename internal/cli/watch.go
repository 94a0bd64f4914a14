package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/njchilds90/geosymbol/internal/logging"
	"github.com/njchilds90/geosymbol/internal/service"
)

type watchOptions struct {
	file     string
	format   string
	debounce time.Duration
}

func (a *App) newWatchCmd() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-solve a facts file whenever it changes",
		Long: `Solve the facts file once, then again after every write to it,
until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			return a.runWatch(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "Output format: text, json or latex")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 100*time.Millisecond, "Quiet period before re-solving")
	return cmd
}

func (a *App) runWatch(ctx context.Context, opts *watchOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	path, err := filepath.Abs(opts.file)
	if err != nil {
		return errors.Wrap(err, "resolve path")
	}

	svc, release, err := a.newService(false)
	if err != nil {
		return err
	}
	defer release()

	// The first solve must succeed so a bad path fails fast.
	if err := a.solveFile(ctx, svc, path, opts.format); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file rather than write it, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "watch directory")
	}
	logging.Info().Add(logging.Str("file", path)).Msg("watching")

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(opts.debounce)
			pending = timer.C
		case <-pending:
			pending = nil
			if err := a.solveFile(ctx, svc, path, opts.format); err != nil {
				logging.Warn().Add(logging.Str("file", path)).Add(logging.ErrorField(err)).Msg("solve failed")
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Add(logging.ErrorField(err)).Msg("watcher error")
		}
	}
}

func (a *App) solveFile(ctx context.Context, svc *service.Service, path, format string) error {
	req, err := loadRequestFile(path)
	if err != nil {
		return err
	}
	res, err := svc.Solve(ctx, req)
	if err != nil {
		return err
	}
	if format == "text" {
		fmt.Fprintf(a.stdout, "== %s (%s)\n", filepath.Base(path), time.Now().Format(time.TimeOnly))
	}
	return render(a.stdout, res, format)
}
