// FILE: alteon/query.go
package alteon

import (
	"sort"
	"strings"
)

// ModuleSet is a frozen population of blocks from one or more parses.
// It is immutable after construction; any number of goroutines may
// query it concurrently without locking.
type ModuleSet struct {
	modules  []ModuleBlock
	warnings []Warning
	sources  []string
	byPath   map[string][]int
	byType   map[ModuleType][]int
	dups     []DuplicateGroup
}

// NewModuleSet merges parse results into one queryable set. Block order
// is preserved: results in argument order, blocks in input order within
// each. Duplicate detection runs once here, over the full population.
func NewModuleSet(results ...*Result) *ModuleSet {
	var blocks []ModuleBlock
	var warnings []Warning
	var sources []string
	for _, r := range results {
		if r == nil {
			continue
		}
		blocks = append(blocks, r.Modules...)
		warnings = append(warnings, r.Warnings...)
		if r.Source != "" {
			sources = append(sources, r.Source)
		}
	}
	return newModuleSet(blocks, warnings, sources)
}

func newModuleSet(blocks []ModuleBlock, warnings []Warning, sources []string) *ModuleSet {
	s := &ModuleSet{
		modules:  blocks,
		warnings: warnings,
		sources:  sources,
		byPath:   make(map[string][]int),
		byType:   make(map[ModuleType][]int),
	}
	for i := range blocks {
		s.byPath[blocks[i].Path] = append(s.byPath[blocks[i].Path], i)
		s.byType[blocks[i].Type] = append(s.byType[blocks[i].Type], i)
	}
	s.dups = FindDuplicates(blocks)
	return s
}

// Len returns the number of blocks in the set.
func (s *ModuleSet) Len() int {
	return len(s.modules)
}

// All returns every block in original order.
func (s *ModuleSet) All() []ModuleBlock {
	return append([]ModuleBlock(nil), s.modules...)
}

// Sources lists the files the set was built from, in ingest order.
func (s *ModuleSet) Sources() []string {
	return append([]string(nil), s.sources...)
}

// Warnings returns every non-fatal problem recorded while parsing.
func (s *ModuleSet) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

// Duplicates returns the cross-file duplicate groups found when the set
// was frozen.
func (s *ModuleSet) Duplicates() []DuplicateGroup {
	return append([]DuplicateGroup(nil), s.dups...)
}

// ByPath returns the blocks whose path matches exactly, in input order.
func (s *ModuleSet) ByPath(path string) []ModuleBlock {
	idx := s.byPath[path]
	out := make([]ModuleBlock, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.modules[i])
	}
	return out
}

// ByPrefix returns the blocks whose path equals the prefix or sits
// beneath it on a segment boundary: "/c/slb" matches "/c/slb/real" but
// never "/c/slbx".
func (s *ModuleSet) ByPrefix(prefix string) []ModuleBlock {
	prefix = strings.TrimSuffix(prefix, "/")
	out := make([]ModuleBlock, 0)
	for i := range s.modules {
		p := s.modules[i].Path
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			out = append(out, s.modules[i])
		}
	}
	return out
}

// ByType returns the blocks carrying the given type tag, in input order.
func (s *ModuleSet) ByType(t ModuleType) []ModuleBlock {
	idx := s.byType[t]
	out := make([]ModuleBlock, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.modules[i])
	}
	return out
}

// Paths lists every distinct module path, sorted.
func (s *ModuleSet) Paths() []string {
	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
