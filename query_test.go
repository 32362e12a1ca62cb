// FILE: alteon/query_test.go
package alteon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func querySet(t *testing.T) *ModuleSet {
	t.Helper()
	p := New()
	r1 := p.Parse("/c/slb/real 1\n\trip 10.0.0.9\n/c/slb/real Cache-Tier\n\trip 10.0.0.10\n/c/slb/virt 12\n\tvip 10.0.0.80\n")
	r1.Source = "sw1.txt"
	r2 := p.Parse("/c/sys/mmgmt\n\taddr 10.0.0.1\n/c/slbx 1\n\tena\n")
	r2.Source = "sw2.txt"
	return NewModuleSet(r1, r2)
}

// TestModuleSetQueries tests the lookup surfaces
func TestModuleSetQueries(t *testing.T) {
	s := querySet(t)

	t.Run("Len", func(t *testing.T) {
		assert.Equal(t, 5, s.Len())
	})

	t.Run("AllPreservesOrder", func(t *testing.T) {
		all := s.All()
		require.Len(t, all, 5)
		assert.Equal(t, "/c/slb/real", all[0].Path)
		assert.Equal(t, "1", all[0].Index)
		assert.Equal(t, "/c/slbx", all[4].Path)
	})

	t.Run("ByPath", func(t *testing.T) {
		reals := s.ByPath("/c/slb/real")
		require.Len(t, reals, 2)
		assert.Equal(t, "1", reals[0].Index)
		assert.Equal(t, "Cache-Tier", reals[1].Index)
		assert.Empty(t, s.ByPath("/c/nothing"))
	})

	t.Run("ByPrefixSegmentBoundary", func(t *testing.T) {
		slb := s.ByPrefix("/c/slb")
		require.Len(t, slb, 3)
		for _, b := range slb {
			assert.NotEqual(t, "/c/slbx", b.Path)
		}
		// Trailing slash and exact match behave the same.
		assert.Len(t, s.ByPrefix("/c/slb/"), 3)
		assert.Len(t, s.ByPrefix("/c/slb/real"), 2)
	})

	t.Run("ByType", func(t *testing.T) {
		assert.Len(t, s.ByType(ModuleIndexed), 1)
		assert.Len(t, s.ByType(ModuleStandard), 4)
		assert.Empty(t, s.ByType(ModuleAction))
	})

	t.Run("PathsSorted", func(t *testing.T) {
		assert.Equal(t, []string{"/c/slb/real", "/c/slb/virt", "/c/slbx", "/c/sys/mmgmt"}, s.Paths())
	})

	t.Run("Sources", func(t *testing.T) {
		assert.Equal(t, []string{"sw1.txt", "sw2.txt"}, s.Sources())
	})
}

// TestModuleSetIsolation tests that accessors hand out copies
func TestModuleSetIsolation(t *testing.T) {
	s := querySet(t)

	all := s.All()
	all[0].Path = "/mutated"
	assert.Equal(t, "/c/slb/real", s.All()[0].Path)

	srcs := s.Sources()
	srcs[0] = "mutated"
	assert.Equal(t, "sw1.txt", s.Sources()[0])
}

// TestModuleSetWarnings tests warning passthrough
func TestModuleSetWarnings(t *testing.T) {
	p := New()
	r := p.Parse("orphan\n/c/sys/mmgmt\n\tena\n")
	s := NewModuleSet(r)

	require.Len(t, s.Warnings(), 1)
	assert.Equal(t, 1, s.Warnings()[0].Line)
}

// TestModuleSetDuplicates tests duplicate detection across results
func TestModuleSetDuplicates(t *testing.T) {
	p := New()
	r1 := parseNamed(p, "a.txt", "/c/sys/mmgmt\n\taddr 10.0.0.1\n")
	r2 := parseNamed(p, "b.txt", "/c/sys/mmgmt\n\taddr 10.0.0.1\n")

	s := NewModuleSet(r1, r2)
	dups := s.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, "/c/sys/mmgmt", dups[0].Path)
	assert.Equal(t, []string{"a.txt", "b.txt"}, dups[0].Files)
}

// parseNamed parses text as if it had come from the given file.
func parseNamed(p *Parser, name, text string) *Result {
	res := p.Parse(text)
	stampSource(res, name)
	return res
}

// TestModuleSetNilResults tests tolerance of nil inputs
func TestModuleSetNilResults(t *testing.T) {
	p := New()
	r := p.Parse("/c/sys/mmgmt\n\tena\n")
	s := NewModuleSet(nil, r, nil)
	assert.Equal(t, 1, s.Len())
}
