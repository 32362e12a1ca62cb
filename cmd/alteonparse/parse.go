// FILE: cmd/alteonparse/parse.go
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"alteon"
)

var parseOut string

// parseCmd parses individual files and prints a summary.
var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Parse configuration files and print a summary",
	Long: `Parse one or more configuration dumps and print aggregate counts.
With --out, the merged document is also written; the output format
follows the file extension (JSON, YAML or TOML).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildParser()
		if err != nil {
			return err
		}

		results := make([]*alteon.Result, 0, len(args))
		for _, path := range args {
			res, err := p.ParseFile(path)
			if err != nil {
				return err
			}
			slog.Info("parsed",
				"file", path,
				"modules", len(res.Modules),
				"form_factor", res.FormFactor,
				"warnings", len(res.Warnings))
			results = append(results, res)
		}

		set := alteon.NewModuleSet(results...)
		for _, w := range set.Warnings() {
			slog.Warn("parse warning", "file", w.File, "line", w.Line, "message", w.Message)
		}
		printSummary(cmd.OutOrStdout(), set)

		if parseOut != "" {
			doc := alteon.NewDocument(set)
			if err := doc.WriteFile(parseOut); err != nil {
				return err
			}
			slog.Info("document written", "path", parseOut)
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "write the merged document to this file")
	rootCmd.AddCommand(parseCmd)
}
