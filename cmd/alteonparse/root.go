// FILE: cmd/alteonparse/root.go
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alteon"
)

var (
	rootOptionsFile string
	rootLogLevel    string
)

// rootCmd is the base command for the alteonparse tool.
var rootCmd = &cobra.Command{
	Use:   "alteonparse",
	Short: "Parse Alteon-style configuration dumps into module blocks",
	Long: `alteonparse converts CLI-style configuration dumps into structured,
lossless module blocks: hierarchical command paths with their settings,
one-shot action commands, and multiline certificate and script payloads.

Parsed output is written as a document (JSON, YAML or TOML) carrying
every block in input order plus aggregate statistics and cross-file
duplicate groups.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(rootLogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOptionsFile, "options", envDefault("ALTEON_OPTIONS", ""), "parser options file (TOML, YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", envDefault("ALTEON_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
}

// setupLogging installs the process-wide structured logger.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// envDefault reads an environment override for a flag default.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildParser assembles the parser from the persistent options flag.
// A missing options file logs a warning and falls back to defaults.
func buildParser() (*alteon.Parser, error) {
	b := alteon.NewBuilder()
	if rootOptionsFile != "" {
		b = b.WithOptionsFile(rootOptionsFile)
	}
	p, err := b.Build()
	if err != nil {
		if !errors.Is(err, alteon.ErrSourceNotFound) {
			return nil, err
		}
		slog.Warn("options file not found, using defaults", "path", rootOptionsFile)
	}
	return p, nil
}

// printSummary renders the aggregate view of a module set.
func printSummary(w io.Writer, set *alteon.ModuleSet) {
	st := set.Stats()

	fmt.Fprintf(w, "Modules: %d  Paths: %d  Indexed: %d  Files: %d\n",
		st.TotalModules, st.UniquePaths, st.IndexedModules, st.SourceFiles)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCOUNT")
	for _, t := range alteon.ModuleTypes() {
		if n := st.ByType[t]; n > 0 {
			fmt.Fprintf(tw, "%s\t%d\n", t, n)
		}
	}
	tw.Flush()

	if len(st.FormFactors) > 0 {
		forms := make([]string, 0, len(st.FormFactors))
		for f := range st.FormFactors {
			forms = append(forms, string(f))
		}
		sort.Strings(forms)
		fmt.Fprint(w, "Form factors:")
		for _, f := range forms {
			fmt.Fprintf(w, " %s=%d", f, st.FormFactors[alteon.FormFactor(f)])
		}
		fmt.Fprintln(w)
	}

	if dups := set.Duplicates(); len(dups) > 0 {
		fmt.Fprintf(w, "Cross-file duplicates: %d group(s)\n", len(dups))
	}
	if st.Warnings > 0 {
		fmt.Fprintf(w, "Warnings: %d\n", st.Warnings)
	}
}
