package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 500 * time.Millisecond

func newWatchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate missing summaries whenever articles change",
		Long: `Runs a generate pass, then watches opeds/ and investigate/ and runs another pass
shortly after any Markdown file is created, changed or renamed. Passes never overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, opts)
		},
	}
	addProviderFlags(cmd)
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	sess, err := newSession(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := 0
	for _, dir := range sess.layout.Dirs {
		path := sess.layout.DirPath(dir)
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			slog.Debug("Content directory missing, not watching", "dir", path)
			continue
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no content directories found under %s", sess.layout.Root)
	}

	var mu sync.Mutex
	pass := func() {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if _, err := sess.builder().Run(ctx); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}

	pass()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %d content directories for changes. Press Ctrl+C to stop.\n", watched)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, pass)
	}

	for {
		select {
		case <-ctx.Done():
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timerMu.Unlock()
			// Wait for an in-flight pass to finish.
			mu.Lock()
			defer mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isContentEvent(event, sess.layout.Ext) {
				continue
			}
			slog.Debug("Content changed", "file", event.Name, "op", event.Op.String())
			schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}

// isContentEvent reports whether the event touches an article file.
func isContentEvent(event fsnotify.Event, ext string) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Ext(event.Name) == ext
}
