package converge

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Default delay between the last file event and the convergence run.
// Editors often write a file in several steps.
const DefaultWatchDelay = 500 * time.Millisecond

// Runs the convergence whenever the manifest or the shared networks file
// changes. The runs are executed sequentially by the watching goroutine,
// so they never overlap.
type Watcher struct {
	runner  *Runner
	paths   map[string]bool
	watcher *fsnotify.Watcher
	delay   time.Duration
	// Called after each run. It is used to report the run outcome.
	onRun func(*Result, error)
}

// Creates a watcher of the input files of the runner. The parent
// directories are watched rather than the files because the editors and
// the configuration management tools replace the files by renaming.
func NewWatcher(runner *Runner, delay time.Duration) (*Watcher, error) {
	paths := make(map[string]bool)
	for _, path := range []string{runner.settings.ManifestPath, runner.settings.SharedNetworksPath} {
		if path == "" {
			continue
		}
		absolute, err := filepath.Abs(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot resolve the path %s", path)
		}
		paths[absolute] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create the file watcher")
	}
	directories := make(map[string]bool)
	for path := range paths {
		directory := filepath.Dir(path)
		if directories[directory] {
			continue
		}
		if err := watcher.Add(directory); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "cannot watch the directory %s", directory)
		}
		directories[directory] = true
		log.WithField("directory", directory).Info("Watching directory")
	}

	return &Watcher{
		runner:  runner,
		paths:   paths,
		watcher: watcher,
		delay:   delay,
		onRun:   func(*Result, error) {},
	}, nil
}

// Sets the function called after each run.
func (w *Watcher) SetRunCallback(callback func(*Result, error)) {
	w.onRun = callback
}

// Runs the convergence once and then after each change of the watched
// files until the context is done. The run failures are logged and don't
// stop the watching.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	w.run(ctx)

	var timer *time.Timer
	var fired <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}
			log.WithError(err).Error("Received error from the file watcher")
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("file watcher event channel closed")
			}
			if !w.paths[filepath.Clean(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			log.WithField("event", event).Debug("Input file changed")
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fired = timer.C
		case <-fired:
			fired = nil
			w.run(ctx)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	result, err := w.runner.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Convergence failed")
	}
	w.onRun(result, err)
}
