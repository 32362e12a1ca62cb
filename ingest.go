// FILE: alteon/ingest.go
package alteon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// IngestOptions configures directory ingestion.
type IngestOptions struct {
	// Patterns are shell globs matched against file names.
	Patterns []string
	// Recursive descends into subdirectories.
	Recursive bool
	// Workers bounds concurrent file parses. Zero means NumCPU.
	Workers int
	// CacheSize is how many parse results are kept by content hash.
	// Zero means the default; negative disables caching.
	CacheSize int
}

// DefaultIngestOptions returns the ingestion defaults: the extensions
// device dumps are saved under, one worker per CPU, caching on.
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{
		Patterns:  []string{"*.txt", "*.cfg", "*.conf"},
		CacheSize: defaultCacheSize,
	}
}

// Ingestor parses whole directories of configuration dumps. Identical
// file contents parse once: repeats are served from a content-hash
// cache and restamped with their own provenance, with concurrent misses
// on the same content collapsed into a single parse.
type Ingestor struct {
	parser *Parser
	opts   IngestOptions
	cache  *lru.Cache[string, *Result]
	group  singleflight.Group
}

// NewIngestor wires a parser to directory ingestion. A nil parser gets
// the defaults.
func NewIngestor(parser *Parser, opts IngestOptions) (*Ingestor, error) {
	if parser == nil {
		parser = New()
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultIngestOptions().Patterns
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	ing := &Ingestor{parser: parser, opts: opts}

	size := opts.CacheSize
	if size == 0 {
		size = defaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, *Result](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create parse cache: %w", err)
		}
		ing.cache = cache
	}
	return ing, nil
}

// Discover lists the input files under dir matching the configured
// patterns, sorted for deterministic processing order.
func (ing *Ingestor) Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", ErrSourceNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", dir)
	}

	var files []string
	if ing.opts.Recursive {
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && ing.matches(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk '%s': %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory '%s': %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && ing.matches(e.Name()) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (ing *Ingestor) matches(name string) bool {
	for _, pat := range ing.opts.Patterns {
		if ok, err := filepath.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Run discovers and parses everything under dir and freezes the merged
// set. An empty directory yields an empty set, not an error.
func (ing *Ingestor) Run(ctx context.Context, dir string) (*ModuleSet, error) {
	files, err := ing.Discover(dir)
	if err != nil {
		return nil, err
	}
	return ing.ParseFiles(ctx, files)
}

// ParseFiles parses the named files in parallel. Block order follows
// the given file order regardless of which parse finishes first. A file
// that cannot be read is recorded as a warning under its own name and
// never stops the rest; only context cancellation aborts the run.
func (ing *Ingestor) ParseFiles(ctx context.Context, paths []string) (*ModuleSet, error) {
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ing.parseFile(path)
			if err != nil {
				results[i] = &Result{
					Source:   path,
					Warnings: []Warning{{File: path, Message: fmt.Sprintf("failed to ingest: %v", err)}},
				}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewModuleSet(results...), nil
}

// parseFile reads one file, serving repeated contents from the cache.
func (ing *Ingestor) parseFile(path string) (*Result, error) {
	data, err := readSource(path, ing.parser.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}

	if ing.cache == nil {
		res := ing.parser.Parse(string(data))
		stampSource(res, path)
		return res, nil
	}

	key := contentHash(data)
	cached, ok := ing.cache.Get(key)
	if !ok {
		// Collapse concurrent parses of identical content into one.
		v, err, _ := ing.group.Do(key, func() (any, error) {
			if hit, ok := ing.cache.Get(key); ok {
				return hit, nil
			}
			res := ing.parser.Parse(string(data))
			ing.cache.Add(key, res)
			return res, nil
		})
		if err != nil {
			return nil, err
		}
		cached = v.(*Result)
	}

	res := cloneResult(cached)
	stampSource(res, path)
	return res, nil
}

// contentHash keys the parse cache on exact file contents.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cloneResult copies a cached result so provenance stamping cannot leak
// between files sharing contents. Inner slices are shared; blocks are
// never mutated after finalization.
func cloneResult(r *Result) *Result {
	out := &Result{
		Source:     r.Source,
		FormFactor: r.FormFactor,
		LineCount:  r.LineCount,
	}
	out.Modules = make([]ModuleBlock, len(r.Modules))
	copy(out.Modules, r.Modules)
	if len(r.Warnings) > 0 {
		out.Warnings = make([]Warning, len(r.Warnings))
		copy(out.Warnings, r.Warnings)
	}
	return out
}

// IngestReport summarizes one incremental run.
type IngestReport struct {
	// Parsed lists the files read and parsed this run.
	Parsed []string
	// Reused lists the files whose blocks were carried over unchanged.
	Reused []string
	// Pruned lists state entries dropped because their files are gone.
	Pruned []string
}

// RunIncremental reuses blocks from a previous document for inputs
// whose recorded state is unchanged, parsing only new or modified
// files. Passing a nil previous document or an empty state parses
// everything. The state is updated in place to match this run.
func (ing *Ingestor) RunIncremental(ctx context.Context, dir string, prev *Document, state *IngestState) (*ModuleSet, *IngestReport, error) {
	if state == nil {
		state = NewIngestState()
	}

	files, err := ing.Discover(dir)
	if err != nil {
		return nil, nil, err
	}

	prevByFile := make(map[string]*Result)
	if prev != nil {
		prevByFile = splitDocumentBySource(prev)
	}

	report := &IngestReport{}
	ordered := make([]*Result, len(files))
	var toParse []string
	var slots []int
	for i, f := range files {
		if cached, ok := prevByFile[f]; ok && !state.Changed(f) {
			ordered[i] = cached
			report.Reused = append(report.Reused, f)
			continue
		}
		toParse = append(toParse, f)
		slots = append(slots, i)
	}

	parsedSet, err := ing.ParseFiles(ctx, toParse)
	if err != nil {
		return nil, nil, err
	}
	// Regroup the freshly parsed blocks file by file into their slots.
	freshByFile := make(map[string]*Result, len(toParse))
	for _, f := range toParse {
		freshByFile[f] = &Result{Source: f}
	}
	for _, b := range parsedSet.All() {
		r := freshByFile[b.SourceFile]
		r.Modules = append(r.Modules, b)
	}
	for _, w := range parsedSet.Warnings() {
		if r, ok := freshByFile[w.File]; ok {
			r.Warnings = append(r.Warnings, w)
		}
	}
	for n, f := range toParse {
		ordered[slots[n]] = freshByFile[f]
		report.Parsed = append(report.Parsed, f)
		if err := state.Record(f); err != nil {
			// Unreadable now; drop any stale entry so the next run retries.
			state.Forget(f)
		}
	}

	report.Pruned = state.Prune(files)

	return NewModuleSet(ordered...), report, nil
}

// splitDocumentBySource regroups a document's blocks and warnings by
// the file they came from.
func splitDocumentBySource(doc *Document) map[string]*Result {
	out := make(map[string]*Result)
	get := func(file string) *Result {
		r, ok := out[file]
		if !ok {
			r = &Result{Source: file}
			out[file] = r
		}
		return r
	}
	for _, b := range doc.Modules {
		if b.SourceFile == "" {
			continue
		}
		r := get(b.SourceFile)
		r.Modules = append(r.Modules, b)
	}
	for _, w := range doc.Warnings {
		if w.File == "" {
			continue
		}
		r := get(w.File)
		r.Warnings = append(r.Warnings, w)
	}
	return out
}
