// Package watcher reports changes to a set of files.
//
// Directories containing the files are watched rather than the files
// themselves, so editors that save by writing a temporary file and renaming
// it over the original are still noticed. Changes are debounced: a burst of
// events across any of the files produces a single Batch once the files have
// been quiet for the debounce delay.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/minui/internal/logging"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 200 * time.Millisecond

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
	} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to one watched file. Op combines every operation seen
// for the file during the batch window.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Batch is a debounced set of changes, one event per file, sorted by path.
type Batch struct {
	Events []Event
}

// Paths returns the changed files.
func (b Batch) Paths() []string {
	paths := make([]string, len(b.Events))
	for i, e := range b.Events {
		paths[i] = e.Path
	}
	return paths
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher watches a set of files.
type Watcher struct {
	fsw    *fsnotify.Watcher
	delay  time.Duration
	logger *logging.Logger

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool
	pending map[string]*Event
	timer   *time.Timer
	closed  bool

	batches  chan Batch
	errors   chan error
	closeCh  chan struct{}
	closedWg sync.WaitGroup
	sending  sync.WaitGroup
}

// New creates a watcher with no files.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		delay:   DefaultDebounce,
		logger:  logging.Nop(),
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		pending: make(map[string]*Event),
		batches: make(chan Batch, 16),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Add starts watching a file.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[absPath] {
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Batches returns the debounced change channel. It is closed by Close.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Run calls fn for every batch until ctx is done or the watcher closes.
func (w *Watcher) Run(ctx context.Context, fn func(Batch)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-w.batches:
			if !ok {
				return ErrWatcherClosed
			}
			fn(b)
		case err, ok := <-w.errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.logger.Warn("%v", err)
		}
	}
}

// Flush delivers pending changes immediately.
func (w *Watcher) Flush() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.fire()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]*Event)
	w.mu.Unlock()

	w.closedWg.Wait()
	w.sending.Wait()
	err := w.fsw.Close()

	close(w.batches)
	close(w.errors)
	return err
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Channel full, drop error
			}
		}
	}
}

// handleFSEvent records an event for a watched file and restarts the
// debounce timer.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}

	if p, ok := w.pending[path]; ok {
		p.Op |= op
		p.Timestamp = time.Now()
	} else {
		w.pending[path] = &Event{Path: path, Op: op, Timestamp: time.Now()}
	}

	if w.timer == nil {
		w.timer = time.AfterFunc(w.delay, w.fire)
	} else {
		w.timer.Reset(w.delay)
	}
}

// fire sends the pending events as one batch.
func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := Batch{Events: make([]Event, 0, len(w.pending))}
	for _, e := range w.pending {
		batch.Events = append(batch.Events, *e)
	}
	w.pending = make(map[string]*Event)
	w.sending.Add(1)
	w.mu.Unlock()
	defer w.sending.Done()

	sort.Slice(batch.Events, func(i, j int) bool {
		return batch.Events[i].Path < batch.Events[j].Path
	})

	select {
	case w.batches <- batch:
	case <-w.closeCh:
	}
}

// convertOp converts fsnotify.Op to watcher.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
