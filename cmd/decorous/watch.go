package main

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Rebuild a .decor file on every change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	addCompileFlags(watchCmd)
}

// debounce batches the several near-simultaneous fsnotify events a
// single editor save can produce into one rebuild, the same idiom the
// pack's own fsnotify watcher uses for rapid-save coalescing.
const debounce = 200 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	opts, err := compileOptionsFromFlags()
	if err != nil {
		return &cliError{code: 1, err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &cliError{code: 3, err: err}
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return &cliError{code: 3, err: err}
	}

	logger.Sugar().Infof("watching %s", path)
	if err := buildOnce(cmd.Context(), path, opts); err != nil {
		logger.Sugar().Warnf("initial build failed: %v", err)
	}

	var timer *time.Timer
	rebuild := func() {
		logger.Sugar().Infof("rebuilding %s", path)
		if err := buildOnce(cmd.Context(), path, opts); err != nil {
			logger.Sugar().Warnf("rebuild failed: %v", err)
		}
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, rebuild)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Sugar().Warnf("watch error: %v", err)
		}
	}
}
