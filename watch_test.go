// FILE: alteon/watch_test.go
package alteon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type watchDelivery struct {
	set *ModuleSet
	err error
}

func startWatch(t *testing.T, dir string, opts WatchOptions) (chan watchDelivery, context.CancelFunc, chan error) {
	t.Helper()
	ing, err := NewIngestor(nil, DefaultIngestOptions())
	if err != nil {
		t.Fatal("Failed to create ingestor:", err)
	}

	deliveries := make(chan watchDelivery, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- ing.Watch(ctx, dir, opts, func(set *ModuleSet, err error) {
			deliveries <- watchDelivery{set: set, err: err}
		})
	}()
	return deliveries, cancel, done
}

func TestWatchInitialDelivery(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "sw1.txt"), []byte("/c/sys/mmgmt\n\tena\n"), 0644); err != nil {
		t.Fatal("Failed to write config:", err)
	}

	opts := WatchOptions{
		PollInterval: 100 * time.Millisecond,
		Debounce:     50 * time.Millisecond,
	}
	deliveries, cancel, done := startWatch(t, tmpDir, opts)
	defer cancel()

	// The initial ingest arrives before any change happens.
	select {
	case d := <-deliveries:
		if d.err != nil {
			t.Fatal("Initial ingest failed:", d.err)
		}
		if d.set.Len() != 1 {
			t.Errorf("Expected 1 module in initial delivery, got %d", d.set.Len())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for initial delivery")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchDetectsChange(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "sw1.txt"), []byte("/c/sys/mmgmt\n\tena\n"), 0644); err != nil {
		t.Fatal("Failed to write config:", err)
	}

	opts := WatchOptions{
		PollInterval: 100 * time.Millisecond,
		Debounce:     50 * time.Millisecond,
	}
	deliveries, cancel, _ := startWatch(t, tmpDir, opts)
	defer cancel()

	// Drain the initial delivery first.
	select {
	case <-deliveries:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for initial delivery")
	}

	// Add a file; the next poll should pick it up after the debounce.
	if err := os.WriteFile(filepath.Join(tmpDir, "sw2.txt"), []byte("/c/slb/real 1\n\trip 10.0.0.9\n"), 0644); err != nil {
		t.Fatal("Failed to write config:", err)
	}

	select {
	case d := <-deliveries:
		if d.err != nil {
			t.Fatal("Re-ingest failed:", d.err)
		}
		if d.set.Len() != 2 {
			t.Errorf("Expected 2 modules after change, got %d", d.set.Len())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for change delivery")
	}
}

func TestWatchDebounceCoalesces(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sw1.txt")
	if err := os.WriteFile(path, []byte("/c/sys/mmgmt\n\tena\n"), 0644); err != nil {
		t.Fatal("Failed to write config:", err)
	}

	var mu sync.Mutex
	count := 0

	ing, err := NewIngestor(nil, DefaultIngestOptions())
	if err != nil {
		t.Fatal("Failed to create ingestor:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- ing.Watch(ctx, tmpDir, WatchOptions{
			PollInterval: 100 * time.Millisecond,
			Debounce:     300 * time.Millisecond,
		}, func(set *ModuleSet, err error) {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}()

	// Let the initial ingest land.
	time.Sleep(200 * time.Millisecond)

	// Make rapid changes within one debounce window.
	for i := 2; i <= 5; i++ {
		content := fmt.Sprintf("/c/sys/mmgmt\n\tmtu %d\n", i)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal("Failed to update config:", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	// Wait for the debounce to fire once.
	time.Sleep(800 * time.Millisecond)

	mu.Lock()
	got := count
	mu.Unlock()

	// One initial delivery plus one coalesced re-ingest.
	if got != 2 {
		t.Errorf("Expected 2 deliveries (initial + coalesced), got %d", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	ing, err := NewIngestor(nil, DefaultIngestOptions())
	if err != nil {
		t.Fatal("Failed to create ingestor:", err)
	}

	err = ing.Watch(context.Background(), "/non/existent/dir", DefaultWatchOptions(), func(*ModuleSet, error) {})
	if err == nil {
		t.Fatal("Expected error watching a missing directory")
	}
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Expected ErrSourceNotFound, got %v", err)
	}
}

func TestWatchScanErrorsReachCallback(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "configs")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal("Failed to create dir:", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sw1.txt"), []byte("/c/sys/mmgmt\n\tena\n"), 0644); err != nil {
		t.Fatal("Failed to write config:", err)
	}

	opts := WatchOptions{
		PollInterval: 100 * time.Millisecond,
		Debounce:     50 * time.Millisecond,
	}
	deliveries, cancel, _ := startWatch(t, dir, opts)
	defer cancel()

	select {
	case <-deliveries:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for initial delivery")
	}

	// Removing the whole directory makes the next scan fail; the watch
	// must report it and keep running.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal("Failed to remove dir:", err)
	}

	select {
	case d := <-deliveries:
		if d.err == nil {
			t.Error("Expected a scan error delivery")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for scan error")
	}
}
