// File: alteon/stats.go
package alteon

import "sort"

// Stats aggregates a module population.
type Stats struct {
	TotalModules    int                `json:"total_modules" yaml:"total_modules" toml:"total_modules"`
	ByType          map[ModuleType]int `json:"by_type" yaml:"by_type" toml:"by_type"`
	ByTopPath       map[string]int     `json:"by_top_path" yaml:"by_top_path" toml:"by_top_path"`
	FormFactors     map[FormFactor]int `json:"form_factors,omitempty" yaml:"form_factors,omitempty" toml:"form_factors,omitempty"`
	UniquePaths     int                `json:"unique_paths" yaml:"unique_paths" toml:"unique_paths"`
	IndexedModules  int                `json:"indexed_modules" yaml:"indexed_modules" toml:"indexed_modules"`
	SourceFiles     int                `json:"source_files" yaml:"source_files" toml:"source_files"`
	DuplicateGroups int                `json:"duplicate_groups" yaml:"duplicate_groups" toml:"duplicate_groups"`
	Warnings        int                `json:"warnings" yaml:"warnings" toml:"warnings"`
}

// Stats computes aggregate counts over the set.
func (s *ModuleSet) Stats() Stats {
	st := Stats{
		TotalModules:    len(s.modules),
		ByType:          make(map[ModuleType]int),
		ByTopPath:       make(map[string]int),
		FormFactors:     make(map[FormFactor]int),
		UniquePaths:     len(s.byPath),
		SourceFiles:     len(s.sources),
		DuplicateGroups: len(s.dups),
		Warnings:        len(s.warnings),
	}
	for i := range s.modules {
		b := &s.modules[i]
		st.ByType[b.Type]++
		st.ByTopPath[b.TopPath()]++
		if b.FormFactor != "" {
			st.FormFactors[b.FormFactor]++
		}
		if b.Index != "" {
			st.IndexedModules++
		}
	}
	return st
}

// PathCount pairs a path prefix with how many blocks live under it.
type PathCount struct {
	Path  string `json:"path" yaml:"path" toml:"path"`
	Count int    `json:"count" yaml:"count" toml:"count"`
}

// TopPaths returns the n most populated top-level paths, most populated
// first, ties in path order. n <= 0 returns them all.
func (st Stats) TopPaths(n int) []PathCount {
	out := make([]PathCount, 0, len(st.ByTopPath))
	for p, c := range st.ByTopPath {
		out = append(out, PathCount{Path: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Path < out[j].Path
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
