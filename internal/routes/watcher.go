package routes

import (
	"context"
	"path/filepath"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// watchFile watches the directory holding file, since editors often replace
// a file rather than write it in place.
func watchFile(
	ctx context.Context,
	file string,
	delay time.Duration,
	logger logging.Logger,
	callback func(),
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = watcher.Add(filepath.Dir(file))
	if err != nil {
		_ = watcher.Close()
		return err
	}

	reload := make(chan struct{}, 1)
	go scheduleReload(ctx, reload, delay, callback)
	go handleWatcher(ctx, watcher, filepath.Clean(file), reload, logger)
	return nil
}

func handleWatcher(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	file string,
	reload chan<- struct{},
	logger logging.Logger,
) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			select {
			case reload <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error(ctx, "route rules watcher error", "error", err)
		}
	}
}

// scheduleReload runs callback once events have been quiet for delay.
func scheduleReload(
	ctx context.Context,
	reload <-chan struct{},
	delay time.Duration,
	callback func(),
) {
	var timer *time.Timer = nil
	var c <-chan time.Time = nil
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case <-reload:
			if timer != nil {
				timer.Reset(delay)
			} else {
				timer = time.NewTimer(delay)
				c = timer.C
			}

		case <-c:
			c = nil
			timer = nil
			callback()
		}
	}
}
