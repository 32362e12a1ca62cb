// FILE: cmd/alteonparse/ingest.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"alteon"
)

var (
	ingestOutDir    string
	ingestFormat    string
	ingestWorkers   int
	ingestRecursive bool
	ingestForce     bool
	ingestStateFile string
	ingestWatch     bool
	ingestInterval  time.Duration
)

// documentPattern matches the timestamped documents one ingest run writes.
const documentPattern = "parsed_modules_*"

// ingestCmd parses every configuration file in a directory.
var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Parse every configuration file in a directory",
	Long: `Discover and parse every matching configuration file under a directory
and write a timestamped document into the output directory.

Repeat runs are incremental: files whose size, mtime and content hash
are unchanged since the recorded state reuse their blocks from the
newest previous document. --force reparses everything. --watch keeps
running and re-ingests whenever the file population changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		p, err := buildParser()
		if err != nil {
			return err
		}
		ing, err := alteon.NewIngestor(p, alteon.IngestOptions{
			Workers:   ingestWorkers,
			Recursive: ingestRecursive,
		})
		if err != nil {
			return err
		}

		if ingestWatch {
			opts := alteon.DefaultWatchOptions()
			if ingestInterval > 0 {
				opts.PollInterval = ingestInterval
			}
			slog.Info("watching", "dir", dir, "interval", opts.PollInterval)
			err := ing.Watch(cmd.Context(), dir, opts, func(set *alteon.ModuleSet, err error) {
				if err != nil {
					slog.Error("re-ingest failed", "error", err)
					return
				}
				if path, werr := writeIngestDocument(set); werr != nil {
					slog.Error("failed to write document", "error", werr)
				} else {
					slog.Info("document written", "path", path, "modules", set.Len())
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		statePath := ingestStateFile
		if statePath == "" {
			statePath = filepath.Join(ingestOutDir, ".ingest_state.json")
		}

		state := alteon.NewIngestState()
		var prev *alteon.Document
		if !ingestForce {
			state, err = alteon.LoadIngestState(statePath)
			if err != nil {
				return err
			}
			if latest, lerr := alteon.LatestDocument(ingestOutDir, documentPattern); lerr == nil {
				if prev, err = alteon.ReadDocument(latest); err != nil {
					slog.Warn("previous document unreadable, reparsing everything", "path", latest, "error", err)
					prev = nil
				}
			}
		}

		set, report, err := ing.RunIncremental(cmd.Context(), dir, prev, state)
		if err != nil {
			return err
		}
		slog.Info("ingest complete",
			"parsed", len(report.Parsed),
			"reused", len(report.Reused),
			"pruned", len(report.Pruned),
			"modules", set.Len())

		for _, w := range set.Warnings() {
			slog.Warn("parse warning", "file", w.File, "line", w.Line, "message", w.Message)
		}

		path, err := writeIngestDocument(set)
		if err != nil {
			return err
		}
		if err := state.Save(statePath); err != nil {
			return err
		}
		slog.Info("document written", "path", path)

		printSummary(cmd.OutOrStdout(), set)
		return nil
	},
}

// writeIngestDocument writes one timestamped document into the output
// directory and returns its path.
func writeIngestDocument(set *alteon.ModuleSet) (string, error) {
	ext := ingestFormat
	switch ext {
	case "json", "yaml", "toml":
	case "yml":
		ext = "yaml"
	default:
		return "", fmt.Errorf("unsupported output format '%s'", ingestFormat)
	}
	name := fmt.Sprintf("parsed_modules_%s.%s", time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(ingestOutDir, name)
	doc := alteon.NewDocument(set)
	if err := doc.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOutDir, "out-dir", "d", envDefault("ALTEON_OUTPUT_DIR", "data/parsed"), "directory for output documents")
	ingestCmd.Flags().StringVarP(&ingestFormat, "format", "f", "json", "output format (json, yaml, toml)")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "concurrent file parses (0 = number of CPUs)")
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "reparse every file, ignoring recorded state")
	ingestCmd.Flags().StringVar(&ingestStateFile, "state", "", "ingest state file (default <out-dir>/.ingest_state.json)")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and re-ingest on changes")
	ingestCmd.Flags().DurationVar(&ingestInterval, "interval", 0, "watch poll interval (default 1s)")
	rootCmd.AddCommand(ingestCmd)
}
