// File: alteon/duplicate.go
package alteon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
)

// Fingerprint returns a stable content hash of the block: path, index,
// type, the command lines in order, and any captured payload or action
// command. Provenance fields are excluded, so identical content in two
// files hashes equal. Fields are length-delimited before hashing so
// adjacent values cannot run together.
func (b *ModuleBlock) Fingerprint() string {
	h := sha256.New()
	hashField(h, b.Path)
	hashField(h, b.Index)
	hashField(h, string(b.Type))
	for _, line := range b.Lines {
		hashField(h, line)
	}
	if b.Multiline != nil {
		hashField(h, b.Multiline.Body)
	}
	if b.Action != nil {
		hashField(h, b.Action.Verb)
		for _, p := range b.Action.Params {
			hashField(h, p)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashField(w io.Writer, s string) {
	fmt.Fprintf(w, "%d:%s", len(s), s)
}

// DuplicateGroup reports one block content that occurs in more than one
// source file.
type DuplicateGroup struct {
	Fingerprint string     `json:"fingerprint" yaml:"fingerprint" toml:"fingerprint"`
	Path        string     `json:"path" yaml:"path" toml:"path"`
	Index       string     `json:"index,omitempty" yaml:"index,omitempty" toml:"index,omitempty"`
	Type        ModuleType `json:"type" yaml:"type" toml:"type"`
	// Files lists the distinct source files, sorted.
	Files []string `json:"files" yaml:"files" toml:"files"`
	// Occurrences counts every block sharing the fingerprint, including
	// repeats within one file.
	Occurrences int `json:"occurrences" yaml:"occurrences" toml:"occurrences"`
}

// FindDuplicates groups blocks by fingerprint and reports every group
// spanning more than one distinct source file. Repetition within a
// single file is normal device output and is not reported on its own.
// The input is never reordered, merged or dropped; groups come out in
// first-occurrence order.
func FindDuplicates(blocks []ModuleBlock) []DuplicateGroup {
	type entry struct {
		first int
		files map[string]struct{}
		count int
	}

	seen := make(map[string]*entry)
	order := make([]string, 0)
	for i := range blocks {
		fp := blocks[i].Fingerprint()
		e, ok := seen[fp]
		if !ok {
			e = &entry{first: i, files: make(map[string]struct{})}
			seen[fp] = e
			order = append(order, fp)
		}
		e.files[blocks[i].SourceFile] = struct{}{}
		e.count++
	}

	groups := make([]DuplicateGroup, 0)
	for _, fp := range order {
		e := seen[fp]
		if len(e.files) < 2 {
			continue
		}
		files := make([]string, 0, len(e.files))
		for f := range e.files {
			files = append(files, f)
		}
		sort.Strings(files)
		b := &blocks[e.first]
		groups = append(groups, DuplicateGroup{
			Fingerprint: fp,
			Path:        b.Path,
			Index:       b.Index,
			Type:        b.Type,
			Files:       files,
			Occurrences: e.count,
		})
	}
	return groups
}
