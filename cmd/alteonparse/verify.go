// FILE: cmd/alteonparse/verify.go
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"alteon"
)

var (
	verifyDir    string
	verifySample int
)

// verifyCmd re-checks the internal consistency of a parsed document.
var verifyCmd = &cobra.Command{
	Use:   "verify [document]",
	Short: "Check a parsed document for internal consistency",
	Long: `Re-read a parsed document and check that it is internally consistent:
module counts match the metadata, every block carries a valid type tag
with the payload that tag requires, and line ranges are sane. Without
an argument the newest document in --dir is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveVerifyDocument(args)
		if err != nil {
			return err
		}

		doc, err := alteon.ReadDocument(path)
		if err != nil {
			return err
		}

		problems := checkDocument(doc)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Document: %s\n", path)
		fmt.Fprintf(w, "Modules: %d\n", len(doc.Modules))

		incomplete := 0
		for i := range doc.Modules {
			if m := doc.Modules[i].Multiline; m != nil && m.Incomplete {
				incomplete++
			}
		}
		if incomplete > 0 {
			fmt.Fprintf(w, "Incomplete multiline captures: %d\n", incomplete)
		}

		if verifySample > 0 {
			n := verifySample
			if n > len(doc.Modules) {
				n = len(doc.Modules)
			}
			fmt.Fprintf(w, "\nSample:\n")
			for i := 0; i < n; i++ {
				b := &doc.Modules[i]
				fmt.Fprintf(w, "  %s  [%s:%d-%d]\n", b.String(), b.SourceFile, b.LineRange.Start, b.LineRange.End)
			}
		}

		if len(problems) > 0 {
			for _, p := range problems {
				slog.Error("verification problem", "detail", p)
			}
			return fmt.Errorf("document failed verification with %d problem(s)", len(problems))
		}
		fmt.Fprintln(w, "OK")
		return nil
	},
}

// checkDocument returns every consistency problem found.
func checkDocument(doc *alteon.Document) []string {
	var problems []string

	if doc.Metadata.TotalModules != len(doc.Modules) {
		problems = append(problems, fmt.Sprintf("metadata says %d modules, document holds %d", doc.Metadata.TotalModules, len(doc.Modules)))
	}
	if doc.Metadata.Stats.TotalModules != len(doc.Modules) {
		problems = append(problems, fmt.Sprintf("stats say %d modules, document holds %d", doc.Metadata.Stats.TotalModules, len(doc.Modules)))
	}

	valid := make(map[alteon.ModuleType]struct{})
	for _, t := range alteon.ModuleTypes() {
		valid[t] = struct{}{}
	}

	for i := range doc.Modules {
		b := &doc.Modules[i]
		at := fmt.Sprintf("module %d (%s)", i, b.Path)

		if b.Path == "" {
			problems = append(problems, fmt.Sprintf("module %d has an empty path", i))
		}
		if _, ok := valid[b.Type]; !ok && !b.IsMultiline() {
			problems = append(problems, fmt.Sprintf("%s: unknown type '%s'", at, b.Type))
		}
		if b.LineRange.Start < 1 || b.LineRange.End < b.LineRange.Start {
			problems = append(problems, fmt.Sprintf("%s: invalid line range %d-%d", at, b.LineRange.Start, b.LineRange.End))
		}
		if b.IsMultiline() && b.Multiline == nil {
			problems = append(problems, fmt.Sprintf("%s: multiline type without payload", at))
		}
		if !b.IsMultiline() && b.Multiline != nil {
			problems = append(problems, fmt.Sprintf("%s: payload on non-multiline type '%s'", at, b.Type))
		}
		if b.Type == alteon.ModuleAction && b.Action == nil {
			problems = append(problems, fmt.Sprintf("%s: action type without action data", at))
		}
		if b.Type != alteon.ModuleAction && b.Action != nil {
			problems = append(problems, fmt.Sprintf("%s: action data on type '%s'", at, b.Type))
		}
		if b.Hypervisor != "" && b.FormFactor != alteon.FormFactorVA {
			problems = append(problems, fmt.Sprintf("%s: hypervisor tag on form factor '%s'", at, b.FormFactor))
		}
		if b.RawText == "" {
			problems = append(problems, fmt.Sprintf("%s: empty raw text", at))
		}
	}

	return problems
}

func resolveVerifyDocument(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return alteon.LatestDocument(verifyDir, documentPattern)
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyDir, "dir", "d", envDefault("ALTEON_OUTPUT_DIR", "data/parsed"), "directory holding parsed documents")
	verifyCmd.Flags().IntVar(&verifySample, "sample", 5, "how many sample modules to print")
	rootCmd.AddCommand(verifyCmd)
}
