// FILE: cmd/alteonparse/stats.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alteon"
)

var (
	statsDir string
	statsTop int
)

// statsCmd prints aggregate statistics for a parsed document.
var statsCmd = &cobra.Command{
	Use:   "stats [document]",
	Short: "Show statistics for a parsed document",
	Long: `Print aggregate statistics for a parsed document: counts per block
type, the most populated top-level paths, platform distribution and
duplicate groups. Without an argument the newest document in --dir is
used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDocument(args)
		if err != nil {
			return err
		}

		doc, err := alteon.ReadDocument(path)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		st := doc.Metadata.Stats
		fmt.Fprintf(w, "Document: %s\n", path)
		fmt.Fprintf(w, "Generated: %s by %s\n", doc.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"), doc.Metadata.Generator)
		fmt.Fprintf(w, "Modules: %d  Paths: %d  Indexed: %d  Files: %d\n\n",
			st.TotalModules, st.UniquePaths, st.IndexedModules, st.SourceFiles)

		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tCOUNT")
		for _, t := range alteon.ModuleTypes() {
			if n := st.ByType[t]; n > 0 {
				fmt.Fprintf(tw, "%s\t%d\n", t, n)
			}
		}
		tw.Flush()

		fmt.Fprintf(w, "\nTop paths:\n")
		tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		for _, pc := range st.TopPaths(statsTop) {
			fmt.Fprintf(tw, "%s\t%d\n", pc.Path, pc.Count)
		}
		tw.Flush()

		if len(st.FormFactors) > 0 {
			fmt.Fprintf(w, "\nForm factors:\n")
			tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
			for _, f := range []alteon.FormFactor{alteon.FormFactorSA, alteon.FormFactorVA, alteon.FormFactorVX, alteon.FormFactorVADC} {
				if n := st.FormFactors[f]; n > 0 {
					fmt.Fprintf(tw, "%s\t%d\n", f, n)
				}
			}
			tw.Flush()
		}

		if len(doc.Duplicates) > 0 {
			fmt.Fprintf(w, "\nCross-file duplicates:\n")
			tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
			for _, g := range doc.Duplicates {
				fmt.Fprintf(tw, "%s\t%s\t%d file(s)\t%d occurrence(s)\n", g.Path, g.Index, len(g.Files), g.Occurrences)
			}
			tw.Flush()
		}
		return nil
	},
}

// resolveDocument picks the named document or the newest in --dir.
func resolveDocument(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return alteon.LatestDocument(statsDir, documentPattern)
}

func init() {
	statsCmd.Flags().StringVarP(&statsDir, "dir", "d", envDefault("ALTEON_OUTPUT_DIR", "data/parsed"), "directory holding parsed documents")
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "how many top paths to show")
	rootCmd.AddCommand(statsCmd)
}
