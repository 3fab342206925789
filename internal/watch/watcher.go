// Package watch keeps the workspace and module indexes in sync with the file system.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/modindex"
	"github.com/standardbeagle/cppm/internal/workspace"
)

// EventType is the debounced kind of change recorded for a path.
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Batch reports what one debounced flush changed, as root-relative paths.
type Batch struct {
	Added   []string
	Updated []string
	Removed []string
}

// Stats contains counters about watch activity.
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// Watcher applies file system changes under the project root to a workspace index
// and, when set, a module index.
type Watcher struct {
	watcher   *fsnotify.Watcher
	cfg       *config.Config
	workspace *workspace.Index
	modules   *modindex.Index
	debouncer *eventDebouncer

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	onBatch func(Batch)

	statsMu         sync.RWMutex
	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
}

func New(cfg *config.Config, ws *workspace.Index, modules *modindex.Index) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = config.DefaultDebounceMs * time.Millisecond
	}

	w := &Watcher{
		watcher:   fw,
		cfg:       cfg,
		workspace: ws,
		modules:   modules,
	}
	w.debouncer = newEventDebouncer(debounce, w.apply)
	return w, nil
}

// OnBatch registers a callback run after each flush. Set it before Start.
func (w *Watcher) OnBatch(fn func(Batch)) {
	w.onBatch = fn
}

// Start watches every non-excluded directory under the workspace root until ctx is
// cancelled or Stop is called. It does nothing when watching is disabled.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.Watch.Enabled {
		debug.LogWatch("file watching disabled in configuration\n")
		return nil
	}
	if w.started {
		return errors.New("watcher already started")
	}

	root := w.workspace.Root()
	if err := w.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.started = true

	w.wg.Add(1)
	go w.processEvents()

	debug.LogWatch("watching %s\n", root)
	return nil
}

// Stop ends watching and waits for the event loop. Pending events are dropped.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.debouncer.stop()
	err := w.watcher.Close()
	w.wg.Wait()
	w.debouncer.wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	visitedDirs := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if w.ignoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			debug.LogWatch("failed to add watch for %s: %v\n", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignoreDir(path string) bool {
	if path == w.workspace.Root() {
		return false
	}
	rel, err := w.workspace.Rel(path)
	if err != nil {
		return true
	}
	return w.workspace.Filter().SkipDir(rel)
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.incrementStats(0, 1)
			debug.LogWatch("watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("event %v for %s\n", event.Op, path)

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if _, err := os.Stat(path); err != nil {
			w.debouncer.addEvent(path, EventRemove)
			return
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.ignoreDir(path) {
			w.watchNewDir(path)
		}
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.debouncer.addEvent(path, EventCreate)
	case event.Op&fsnotify.Write != 0:
		w.debouncer.addEvent(path, EventWrite)
	}
}

// watchNewDir watches a created directory and queues the files already inside it,
// which were written before the watch existed.
func (w *Watcher) watchNewDir(dir string) {
	if err := w.addWatches(dir); err != nil {
		debug.LogWatch("failed to watch new directory %s: %v\n", dir, err)
		return
	}
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != dir && w.ignoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		w.debouncer.addEvent(path, EventCreate)
		return nil
	})
}

// apply runs one debounced batch: removals first, then creates and writes.
func (w *Watcher) apply(events map[string]EventType) {
	var batch Batch
	var removes, changes []string
	for path, eventType := range events {
		if eventType == EventRemove {
			removes = append(removes, path)
		} else {
			changes = append(changes, path)
		}
	}
	sort.Strings(removes)
	sort.Strings(changes)

	for _, path := range removes {
		for _, rel := range w.workspace.Remove(path) {
			if w.modules != nil {
				w.modules.Remove(rel)
			}
			batch.Removed = append(batch.Removed, rel)
		}
	}

	for _, path := range changes {
		existed := w.workspace.Contains(path)
		if !w.workspace.Add(path) {
			continue
		}
		rel, err := w.workspace.Rel(path)
		if err != nil {
			continue
		}
		if w.modules != nil {
			if _, err := w.modules.Update(rel); err != nil {
				w.incrementStats(0, 1)
				debug.LogWatch("rescan of %s failed: %v\n", rel, err)
			}
		}
		if existed {
			batch.Updated = append(batch.Updated, rel)
		} else {
			batch.Added = append(batch.Added, rel)
		}
	}

	w.incrementStats(int64(len(events)), 0)
	debug.LogWatch("applied %d events: +%d ~%d -%d\n", len(events), len(batch.Added), len(batch.Updated), len(batch.Removed))
	if w.onBatch != nil {
		w.onBatch(batch)
	}
}

func (w *Watcher) incrementStats(events, errs int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.eventsProcessed += events
	w.errorCount += errs
	if events > 0 {
		w.lastEventTime = time.Now()
	}
}

func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return Stats{
		EventsProcessed: w.eventsProcessed,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		IsActive:        w.ctx != nil && w.ctx.Err() == nil,
	}
}
