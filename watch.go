// FILE: alteon/watch.go
package alteon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// WatchOptions configures directory watching behavior.
type WatchOptions struct {
	// PollInterval for directory scans (minimum 100ms)
	PollInterval time.Duration

	// Debounce duration to coalesce bursts of file changes
	Debounce time.Duration
}

// DefaultWatchOptions returns sensible defaults for directory watching.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval: DefaultPollInterval,
		Debounce:     DefaultDebounce,
	}
}

// WatchFunc receives each re-ingested module set. A non-nil error means
// the scan or ingest failed and the previous set stays current. It may
// be invoked from a background goroutine.
type WatchFunc func(set *ModuleSet, err error)

// dirWatcher manages directory watching state.
type dirWatcher struct {
	mu            sync.Mutex
	ing           *Ingestor
	dir           string
	opts          WatchOptions
	fn            WatchFunc
	lastSig       string
	ingestRunning atomic.Bool
	debounceTimer *time.Timer
}

// Watch polls dir and re-ingests whenever the matching file population
// changes: content, size, mtime, addition or removal. The initial
// ingest fires before the first poll. Watch blocks until ctx is
// cancelled and returns ctx's error; scan and parse failures go to fn
// and never stop the watch.
func (ing *Ingestor) Watch(ctx context.Context, dir string, opts WatchOptions, fn WatchFunc) error {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w := &dirWatcher{ing: ing, dir: dir, opts: opts, fn: fn}

	sig, err := ing.scanSignature(dir)
	if err != nil {
		return err
	}
	w.lastSig = sig
	w.reingest(ctx)

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()
	defer w.stopDebounce()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check compares the directory signature and arms the debounce timer on
// a change.
func (w *dirWatcher) check(ctx context.Context) {
	sig, err := w.ing.scanSignature(w.dir)
	if err != nil {
		w.fn(nil, err)
		return
	}

	w.mu.Lock()
	if sig == w.lastSig {
		w.mu.Unlock()
		return
	}
	w.lastSig = sig

	// Debounce rapid changes
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		w.reingest(ctx)
	})
	w.mu.Unlock()
}

// reingest runs one full ingest and delivers it. Overlapping calls are
// collapsed; a collapsed call clears the signature so the next poll
// re-arms instead of losing the update.
func (w *dirWatcher) reingest(ctx context.Context) {
	if !w.ingestRunning.CompareAndSwap(false, true) {
		w.mu.Lock()
		w.lastSig = ""
		w.mu.Unlock()
		return
	}
	defer w.ingestRunning.Store(false)

	if ctx.Err() != nil {
		return
	}
	set, err := w.ing.Run(ctx, w.dir)
	w.fn(set, err)
}

func (w *dirWatcher) stopDebounce() {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()
}

// scanSignature condenses the matching file population, sizes and
// mtimes into one comparable string.
func (ing *Ingestor) scanSignature(dir string) (string, error) {
	files, err := ing.Discover(dir)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue // raced removal; the next scan settles it
		}
		fmt.Fprintf(h, "%s|%d|%d;", f, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
