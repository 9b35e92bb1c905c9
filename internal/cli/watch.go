package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabview/internal/core"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 100 * time.Millisecond

func newWatchCommand(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-export a file every time it changes",
		Long: `Export the file once, then watch it and the selection file for changes
and export again after every write. Press Ctrl+C to stop watching.

Examples:
  tabview watch sales.csv
  tabview watch -s selection.yaml -o west.csv sales.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args[0], output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", core.ExportFileName, "output CSV file")

	return cmd
}

// runWatch exports path to output and repeats on every change to path or
// the selection file until ctx is done. Failed exports are reported and the
// watch continues.
func runWatch(ctx context.Context, opts *options, path, output string, out io.Writer) error {
	if err := validateWatchFilePath(path); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	watched := []string{filepath.Clean(path)}
	if opts.selectionFile != "" {
		watched = append(watched, filepath.Clean(opts.selectionFile))
	}

	watcher, err := createWatcher(watched)
	if err != nil {
		return err
	}
	defer cleanupWatcher(opts, watcher)

	exportOnce := func() {
		n, err := exportFile(opts, path, output)
		if err != nil {
			opts.logger.Warn("export failed", "file", path, "error", err)
			fmt.Fprintf(out, "export failed: %v\n", err)
			return
		}
		fmt.Fprintf(out, "[%s] wrote %d rows to %s\n", time.Now().Format("15:04:05"), n, output)
	}

	opts.logger.Debug("watching", "files", watched, "output", output)
	exportOnce()

	// Stopped timer; armed by the first relevant event.
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if isRelevant(event, watched) {
				opts.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
				debounce.Reset(watchDebounce)
			}

		case <-debounce.C:
			exportOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			opts.logger.Warn("watcher error", "error", err)
		}
	}
}

// exportFile runs the full pipeline for path and writes the View to output.
func exportFile(opts *options, path, output string) (int, error) {
	ds, sel, err := opts.prepare(path)
	if err != nil {
		return 0, err
	}
	view, err := core.Apply(ds, sel)
	if err != nil {
		return 0, err
	}
	if err := writeExport(output, view); err != nil {
		return 0, err
	}
	return view.NumRows(), nil
}

// isRelevant reports whether event rewrote one of the watched files.
// Editors that save by rename show up as Create.
func isRelevant(event fsnotify.Event, watched []string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, w := range watched {
		if name == w {
			return true
		}
	}
	return false
}

// createWatcher watches the directories holding files, so replaced files
// keep being observed.
func createWatcher(files []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	seen := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return watcher, nil
}

// cleanupWatcher closes watcher and logs failures.
func cleanupWatcher(opts *options, watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil {
		opts.logger.Warn("failed to close watcher", "error", err)
	}
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
