// File: alteon/state.go
package alteon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// FileState is the recorded identity of one ingested input.
type FileState struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	SHA256  string    `json:"sha256"`
}

// IngestState remembers which inputs a previous run saw, so re-ingests
// can skip unchanged files. It is meant for single-goroutine use
// between runs, persisted as JSON next to the output documents.
type IngestState struct {
	UpdatedAt time.Time            `json:"last_updated"`
	Files     map[string]FileState `json:"files"`
}

// NewIngestState returns an empty state.
func NewIngestState() *IngestState {
	return &IngestState{Files: make(map[string]FileState)}
}

// LoadIngestState reads a state file. A missing file yields an empty
// state, not an error; a corrupt one is an error so a broken state is
// never silently treated as "everything changed".
func LoadIngestState(path string) (*IngestState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIngestState(), nil
		}
		return nil, fmt.Errorf("failed to read state file '%s': %w", path, err)
	}
	st := NewIngestState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse state file '%s': %w", path, err)
	}
	if st.Files == nil {
		st.Files = make(map[string]FileState)
	}
	return st, nil
}

// Save writes the state atomically.
func (st *IngestState) Save(path string) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return atomicWriteFile(path, data)
}

// Changed reports whether path differs from its recorded identity.
// Unknown and unreadable files count as changed. Matching size and
// mtime short-circuit; otherwise the content hash decides, so a touch
// without modification does not force a reparse.
func (st *IngestState) Changed(path string) bool {
	prev, ok := st.Files[path]
	if !ok {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	if info.Size() == prev.Size && info.ModTime().Equal(prev.ModTime) {
		return false
	}
	sum, err := hashFile(path)
	if err != nil {
		return true
	}
	return sum != prev.SHA256
}

// Record stores the current identity of path.
func (st *IngestState) Record(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat '%s': %w", path, err)
	}
	sum, err := hashFile(path)
	if err != nil {
		return err
	}
	st.Files[path] = FileState{Size: info.Size(), ModTime: info.ModTime(), SHA256: sum}
	return nil
}

// Forget drops the entry for path, forcing a reparse next run.
func (st *IngestState) Forget(path string) {
	delete(st.Files, path)
}

// Prune drops entries whose files are no longer part of the input
// population, returning the dropped paths sorted.
func (st *IngestState) Prune(keep []string) []string {
	keepSet := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		keepSet[k] = struct{}{}
	}
	var pruned []string
	for path := range st.Files {
		if _, ok := keepSet[path]; !ok {
			pruned = append(pruned, path)
		}
	}
	for _, path := range pruned {
		delete(st.Files, path)
	}
	sort.Strings(pruned)
	return pruned
}

// hashFile streams one file through sha256.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash '%s': %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
