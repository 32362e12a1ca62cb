// File: alteon/doc.go

// Package alteon parses Alteon-style CLI configuration dumps into
// ordered, lossless module blocks: hierarchical command paths with
// their settings, one-shot action commands, and multiline certificate
// and script payloads.
//
// Features:
//   - Line-level classification with no information loss; every block
//     keeps its verbatim source span and line range
//   - Six block types: standard, indexed, action, empty, and the two
//     multiline import kinds
//   - Configurable sentinel table for multiline capture, with the
//     device CLI's import syntax built in
//   - Platform detection (SA, VA, VX, vADC) and hypervisor tagging
//     from the dump preamble
//   - Content-hash duplicate detection across source files
//   - Concurrent directory ingestion with a parse cache, incremental
//     re-ingest and polling directory watch
//   - Documents in JSON, YAML or TOML, written atomically
//
// Quick Start:
//
//	p := alteon.New()
//	res, err := p.ParseFile("switch-01.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	set := alteon.NewModuleSet(res)
//	for _, b := range set.ByPrefix("/c/slb") {
//	    fmt.Println(b.String())
//	}
//
// Custom options:
//
//	p, err := alteon.NewBuilder().
//	    WithOptionsFile("parser.toml").
//	    WithActionVerbs("clear", "add", "delete", "remove", "on", "off", "apply").
//	    Build()
//
// Directory ingestion:
//
//	ing, err := alteon.NewIngestor(p, alteon.DefaultIngestOptions())
//	set, err := ing.Run(ctx, "configs/")
//	doc := alteon.NewDocument(set)
//	err = doc.WriteFile("parsed_modules.json")
//
// Thread Safety:
// A Parser is immutable after construction and safe for concurrent use.
// A ModuleSet is frozen at construction; any number of goroutines may
// query it without locking. The Ingestor serializes its cache
// internally.
package alteon
