package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/franz/dive-gallery/internal/collection"
	"github.com/franz/dive-gallery/internal/config"
	"github.com/franz/dive-gallery/internal/names"
	"github.com/franz/dive-gallery/internal/taxonomy"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup NAME...",
	Short: "Resolve subject names against the taxonomy",
	Long: `Normalize each name the way image labels are normalized and look it up
in the taxonomy.

For every name this prints the normalized form, the matching common name,
the scientific lineage and its simplified display form, and flags:
  missing     no scientific name and not excluded
  excluded    deliberately kept out of the taxonomy
  incomplete  resolves only to a genus or higher rank
  imprecise   a more specific common name exists

The image root is not read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	// Lookup-specific flags
	lookupCmd.Flags().Bool("json", false, "Print results as JSON")
}

type lookupResult struct {
	Name       string   `json:"name"`
	Normalized string   `json:"normalized"`
	Common     string   `json:"common,omitempty"`
	Scientific string   `json:"scientific,omitempty"`
	Simplified string   `json:"simplified,omitempty"`
	Flags      []string `json:"flags,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	rules, err := loadRules()
	if err != nil {
		return err
	}

	classifier := nameClassifier(rules)
	results := make([]lookupResult, 0, len(args))
	for _, name := range args {
		results = append(results, describeName(rules, classifier, name))
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printLookups(out, results)
}

// nameClassifier flags names that are suffixes of other normalized common
// names in the taxonomy
func nameClassifier(rules *collection.Rules) *names.Classifier {
	common := rules.Taxonomy.CommonNames()
	normalized := make([]string, 0, len(common))
	for _, name := range common {
		normalized = append(normalized, rules.Normalizer.Normalize(name))
	}
	return names.NewClassifier(normalized, config.Set(rules.Config.ImpreciseOK))
}

// describeName resolves one raw name
func describeName(rules *collection.Rules, classifier *names.Classifier, name string) lookupResult {
	normalized := rules.Normalizer.Normalize(name)
	r := lookupResult{Name: name, Normalized: normalized}

	store := rules.Taxonomy
	if common, scientific, ok := store.Lookup(normalized); ok {
		r.Common = common
		r.Scientific = scientific
		r.Simplified = taxonomy.SimplifyAndElide(scientific)
		if taxonomy.IncompleteLineage(scientific) {
			r.Flags = append(r.Flags, "incomplete")
		}
	}
	if store.Missing(normalized) {
		r.Flags = append(r.Flags, "missing")
	}
	if store.Excluded(normalized) {
		r.Flags = append(r.Flags, "excluded")
	}
	if classifier.Imprecise(normalized) {
		r.Flags = append(r.Flags, "imprecise")
	}
	return r
}

func printLookups(w io.Writer, results []lookupResult) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", r.Name)
		fmt.Fprintf(w, "  normalized:  %s\n", r.Normalized)
		if r.Scientific != "" {
			fmt.Fprintf(w, "  common:      %s\n", r.Common)
			fmt.Fprintf(w, "  scientific:  %s\n", r.Scientific)
			fmt.Fprintf(w, "  simplified:  %s\n", r.Simplified)
		}
		if len(r.Flags) > 0 {
			if _, err := fmt.Fprintf(w, "  flags:       %s\n", strings.Join(r.Flags, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}
