package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 500 * time.Millisecond

// fileWatcher implements FileWatcher interface.
type fileWatcher struct {
	watcher       *fsnotify.Watcher      // Underlying fsnotify watcher
	extensions    map[string]bool        // Extensions to monitor (.py)
	filter        func(path string) bool // Optional path filter
	debounceTime  time.Duration          // Quiet period before firing callback
	logger        *logrus.Logger         // Logger for watch errors
	callback      func(files []string)   // Callback to invoke with changed files
	ctx           context.Context        // Context for lifecycle management
	cancel        context.CancelFunc     // Cancel function for internal context
	paused        bool                   // Whether watching is paused
	pausedMu      sync.RWMutex           // Protects paused flag
	accumulated   map[string]bool        // Accumulated file changes
	accumulatedMu sync.Mutex             // Protects accumulated map
	debounceTimer *time.Timer            // Current debounce timer
	timerMu       sync.Mutex             // Protects debounce timer
	stopOnce      sync.Once              // Ensures Stop() is idempotent
	doneCh        chan struct{}          // Signals watch goroutine has finished
}

// Option customizes a FileWatcher.
type Option func(*fileWatcher)

// WithDebounce sets the quiet period before changes are reported.
func WithDebounce(d time.Duration) Option {
	return func(fw *fileWatcher) {
		fw.debounceTime = d
	}
}

// WithFilter drops changed paths for which keep returns false.
func WithFilter(keep func(path string) bool) Option {
	return func(fw *fileWatcher) {
		fw.filter = keep
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *logrus.Logger) Option {
	return func(fw *fileWatcher) {
		fw.logger = l
	}
}

// NewFileWatcher creates a new file watcher for the given directories.
// dirs: Source directories to watch recursively
// extensions: File extensions to monitor (e.g., []string{".py"})
func NewFileWatcher(dirs []string, extensions []string, opts ...Option) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[ext] = true
	}

	fw := &fileWatcher{
		watcher:      watcher,
		extensions:   extMap,
		debounceTime: DefaultDebounce,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}
	if fw.logger == nil {
		fw.logger = logrus.New()
	}

	for _, dir := range dirs {
		if err := fw.addDirectoriesRecursively(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			// Never started
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories are watched too
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.WithError(err).WithField("dir", event.Name).Warn("failed to watch new directory")
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.pausedMu.RLock()
			paused := fw.paused
			fw.pausedMu.RUnlock()

			// Paused - keep accumulating
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.WithError(err).Warn("file watcher error")
		}
	}
}

// flush fires the callback with accumulated files, sorted, and clears them.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}

	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(files)
	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps writes and creates of monitored files. Removals are
// dropped since there is nothing left to analyze.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	if !fw.extensions[filepath.Ext(event.Name)] {
		return false
	}

	return fw.filter == nil || fw.filter(event.Name)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			fw.logger.WithError(err).WithField("path", path).Warn("error accessing path")
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.WithError(err).WithField("dir", path).Warn("failed to watch directory")
		}
		return nil
	})
}
