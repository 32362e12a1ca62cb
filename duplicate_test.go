// FILE: alteon/duplicate_test.go
package alteon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stdBlock(file, path, index string, lines ...string) ModuleBlock {
	return ModuleBlock{
		Path:       path,
		Index:      index,
		Type:       ModuleStandard,
		Lines:      lines,
		SourceFile: file,
	}
}

// TestFingerprintStability tests that equal content hashes equal
func TestFingerprintStability(t *testing.T) {
	a := stdBlock("a.txt", "/c/sys/mmgmt", "", "addr 10.0.0.1", "ena")
	b := stdBlock("b.txt", "/c/sys/mmgmt", "", "addr 10.0.0.1", "ena")
	// Provenance differs, content does not.
	b.LineRange = LineRange{Start: 90, End: 92}
	b.RawText = "whatever the file said"

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

// TestFingerprintSensitivity tests which differences change the hash
func TestFingerprintSensitivity(t *testing.T) {
	base := stdBlock("a.txt", "/c/sys/mmgmt", "", "addr 10.0.0.1", "ena")

	t.Run("LineOrder", func(t *testing.T) {
		reordered := stdBlock("a.txt", "/c/sys/mmgmt", "", "ena", "addr 10.0.0.1")
		assert.NotEqual(t, base.Fingerprint(), reordered.Fingerprint())
	})

	t.Run("Index", func(t *testing.T) {
		other := stdBlock("a.txt", "/c/sys/mmgmt", "2", "addr 10.0.0.1", "ena")
		assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())
	})

	t.Run("FieldBoundaries", func(t *testing.T) {
		// "ab" + "c" must not collide with "a" + "bc".
		x := stdBlock("a.txt", "/c/x", "ab", "c")
		y := stdBlock("a.txt", "/c/x", "a", "bc")
		assert.NotEqual(t, x.Fingerprint(), y.Fingerprint())
	})

	t.Run("MultilineBody", func(t *testing.T) {
		x := ModuleBlock{Path: "/c/slb/ssl/certs/import", Type: ModuleCert, Multiline: &MultilineData{Body: "AAA"}}
		y := ModuleBlock{Path: "/c/slb/ssl/certs/import", Type: ModuleCert, Multiline: &MultilineData{Body: "BBB"}}
		assert.NotEqual(t, x.Fingerprint(), y.Fingerprint())
	})

	t.Run("ActionParams", func(t *testing.T) {
		x := ModuleBlock{Path: "/c/slb/pip/add", Type: ModuleAction, Action: &ActionData{Verb: "add", Params: []string{"10.0.0.1"}}}
		y := ModuleBlock{Path: "/c/slb/pip/add", Type: ModuleAction, Action: &ActionData{Verb: "add", Params: []string{"10.0.0.2"}}}
		assert.NotEqual(t, x.Fingerprint(), y.Fingerprint())
	})
}

// TestFindDuplicates tests cross-file grouping
func TestFindDuplicates(t *testing.T) {
	blocks := []ModuleBlock{
		stdBlock("b.txt", "/c/sys/mmgmt", "", "addr 10.0.0.1"),
		stdBlock("a.txt", "/c/sys/mmgmt", "", "addr 10.0.0.1"),
		stdBlock("a.txt", "/c/slb/real", "1", "rip 10.0.0.9"),
		stdBlock("c.txt", "/c/sys/mmgmt", "", "addr 10.0.0.1"),
	}

	groups := FindDuplicates(blocks)
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "/c/sys/mmgmt", g.Path)
	assert.Equal(t, ModuleStandard, g.Type)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, g.Files)
	assert.Equal(t, 3, g.Occurrences)
}

// TestFindDuplicatesSameFileOnly tests that in-file repetition is not a
// duplicate
func TestFindDuplicatesSameFileOnly(t *testing.T) {
	blocks := []ModuleBlock{
		stdBlock("a.txt", "/c/slb/group", "4", "add 3"),
		stdBlock("a.txt", "/c/slb/group", "4", "add 3"),
	}
	assert.Empty(t, FindDuplicates(blocks))
}

// TestFindDuplicatesOrder tests first-occurrence group ordering
func TestFindDuplicatesOrder(t *testing.T) {
	blocks := []ModuleBlock{
		stdBlock("a.txt", "/c/second", "", "x 1"),
		stdBlock("a.txt", "/c/first", "", "y 2"),
		stdBlock("b.txt", "/c/first", "", "y 2"),
		stdBlock("b.txt", "/c/second", "", "x 1"),
	}

	groups := FindDuplicates(blocks)
	require.Len(t, groups, 2)
	assert.Equal(t, "/c/second", groups[0].Path)
	assert.Equal(t, "/c/first", groups[1].Path)
}

// TestFindDuplicatesCountsInFileRepeats tests occurrence accounting when
// a cross-file duplicate also repeats within one file
func TestFindDuplicatesCountsInFileRepeats(t *testing.T) {
	blocks := []ModuleBlock{
		stdBlock("a.txt", "/c/sys/ntp", "", "server 10.0.0.5"),
		stdBlock("a.txt", "/c/sys/ntp", "", "server 10.0.0.5"),
		stdBlock("b.txt", "/c/sys/ntp", "", "server 10.0.0.5"),
	}

	groups := FindDuplicates(blocks)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].Occurrences)
	assert.Equal(t, []string{"a.txt", "b.txt"}, groups[0].Files)
}

// TestFindDuplicatesEmpty tests the degenerate inputs
func TestFindDuplicatesEmpty(t *testing.T) {
	assert.Empty(t, FindDuplicates(nil))
	assert.Empty(t, FindDuplicates([]ModuleBlock{}))
}
