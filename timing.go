// FILE: alteon/timing.go
package alteon

import "time"

// Core timing constants for production use.
// These define the fundamental timing behavior of the parser package.
const (
	// Directory watching intervals (ordered by frequency)
	MinPollInterval     = 100 * time.Millisecond // Hard floor for directory stat polling
	DefaultDebounce     = 500 * time.Millisecond // File change coalescence period
	DefaultPollInterval = time.Second            // Standard directory scan frequency
)

// Input and cache bounds.
const (
	// maxSourceFileSize bounds one configuration dump. Device dumps run
	// to a few hundred kilobytes; 10 MB is generous headroom.
	maxSourceFileSize = 10 << 20

	// maxOptionsFileSize bounds parser options files.
	maxOptionsFileSize = 1 << 20

	// maxDocumentSize bounds documents read back for verification.
	maxDocumentSize = 128 << 20

	// defaultCacheSize is how many distinct file contents the ingest
	// cache retains.
	defaultCacheSize = 128

	// headerWindow is how many leading lines are inspected for platform
	// markers.
	headerWindow = 15
)
