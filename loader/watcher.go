package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	eventChannelBuffer = 100

	// DefaultDebounce is how long changes accumulate before they are emitted.
	DefaultDebounce = 500 * time.Millisecond
)

// DefaultWatchExtensions are the ontology file extensions watched when none
// are configured.
var DefaultWatchExtensions = []string{".owl", ".rdf", ".ttl", ".nt", ".n3", ".jsonld", ".xml"}

// WatchOp is the kind of change reported for a file.
type WatchOp string

// Watch operations.
const (
	WatchOpCreate WatchOp = "create"
	WatchOpModify WatchOp = "modify"
	WatchOpDelete WatchOp = "delete"
)

// WatchEvent reports a settled change to an ontology file.
type WatchEvent struct {
	Path string
	Op   WatchOp
}

// Watcher reports debounced changes to ontology files under a directory.
// Writes that leave the content unchanged are suppressed.
type Watcher struct {
	dir        string
	debounce   time.Duration
	extensions map[string]bool
	fsw        *fsnotify.Watcher
	logger     *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events  chan WatchEvent
	dropped atomic.Int64
}

// NewWatcher creates a watcher over dir. A zero debounce uses
// DefaultDebounce; empty extensions use DefaultWatchExtensions.
func NewWatcher(dir string, debounce time.Duration, extensions []string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if len(extensions) == 0 {
		extensions = DefaultWatchExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}

	return &Watcher{
		dir:        dir,
		debounce:   debounce,
		extensions: exts,
		fsw:        fsw,
		logger:     logger,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan WatchEvent, eventChannelBuffer),
	}, nil
}

// Events returns the event channel. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Dropped returns the number of events dropped because the channel was full.
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

// Files returns the ontology files currently known to the watcher, sorted.
// After Start it lists every matching file that existed at startup.
func (w *Watcher) Files() []string {
	w.hashMu.Lock()
	out := make([]string, 0, len(w.hashes))
	for p := range w.hashes {
		out = append(out, p)
	}
	w.hashMu.Unlock()
	sort.Strings(out)
	return out
}

// Start watches every non-hidden directory under dir and processes events
// until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if w.extensions[strings.ToLower(filepath.Ext(p))] {
				w.remember(p)
			}
			return nil
		}
		if base := filepath.Base(p); strings.HasPrefix(base, ".") && p != w.dir {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Warn("Failed to watch directory", "path", p, "error", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.run(ctx)

	w.logger.Info("Ontology watcher started", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !w.extensions[strings.ToLower(filepath.Ext(ev.Name))] {
		if ev.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := w.fsw.Add(ev.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", ev.Name, "error", err)
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[ev.Name] |= ev.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for p := range batch {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			w.forget(p)
			w.send(WatchEvent{Path: p, Op: WatchOpDelete})
			continue
		}

		content, err := os.ReadFile(p)
		if err != nil {
			w.logger.Warn("Failed to read changed file", "path", p, "error", err)
			continue
		}
		sum := sha256.Sum256(content)
		hash := hex.EncodeToString(sum[:])

		w.hashMu.Lock()
		old, had := w.hashes[p]
		w.hashes[p] = hash
		w.hashMu.Unlock()

		switch {
		case !had:
			w.send(WatchEvent{Path: p, Op: WatchOpCreate})
		case old != hash:
			w.send(WatchEvent{Path: p, Op: WatchOpModify})
		}
	}
}

func (w *Watcher) remember(p string) {
	content, err := os.ReadFile(p)
	if err != nil {
		return
	}
	sum := sha256.Sum256(content)
	w.hashMu.Lock()
	w.hashes[p] = hex.EncodeToString(sum[:])
	w.hashMu.Unlock()
}

func (w *Watcher) forget(p string) {
	w.hashMu.Lock()
	delete(w.hashes, p)
	w.hashMu.Unlock()
}

func (w *Watcher) send(ev WatchEvent) {
	select {
	case w.events <- ev:
		w.logger.Debug("Ontology file changed", "path", ev.Path, "op", ev.Op)
	default:
		w.dropped.Add(1)
		w.logger.Warn("Watch event dropped", "path", ev.Path, "op", ev.Op)
	}
}
