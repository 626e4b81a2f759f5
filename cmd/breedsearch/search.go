package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pawfect-mate/backend/internal/config"
	"github.com/pawfect-mate/backend/internal/corpus"
	"github.com/pawfect-mate/backend/internal/search"
)

type searchOptions struct {
	limit   int
	filters map[string]string
	boosts  []string
	json    bool
}

type searchResultView struct {
	ID        string  `json:"id"`
	BreedName string  `json:"breed_name"`
	Score     float64 `json:"score"`
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [question]",
		Short: "Search breed records",
		Long: `Ranks breed records by TF-IDF relevance to the question across all
text fields. Filters restrict results to exact keyword values and boosts
reweight individual fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", search.DefaultK, "maximum number of results")
	cmd.Flags().StringToStringVar(&opts.filters, "filter", nil, "keyword filter as field=value, repeatable")
	cmd.Flags().StringArrayVar(&opts.boosts, "boost", nil, "field weight as field=weight, repeatable")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output results as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions, question string) error {
	boosts, err := config.ParseWeights(strings.Join(opts.boosts, ","))
	if err != nil {
		return fmt.Errorf("invalid --boost: %w", err)
	}

	logger := root.logger(cmd)
	idx, err := root.loadIndex(logger)
	if err != nil {
		return err
	}

	retriever := search.NewRetriever(idx, search.WithLogger(logger.WithField("component", "retriever")))
	results := retriever.SearchScored(question, search.SearchOptions{
		Filters: opts.filters,
		K:       opts.limit,
		Boosts:  boosts,
	})

	views := make([]searchResultView, len(results))
	for i, res := range results {
		views[i] = searchResultView{
			ID:        res.Document.ID,
			BreedName: res.Document.Value(corpus.FieldBreedName),
			Score:     res.Score,
		}
	}

	out := cmd.OutOrStdout()
	if opts.json {
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(views) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintln(out, "Results:")
	fmt.Fprintln(out)
	for i, v := range views {
		title := v.BreedName
		if title == "" {
			title = v.ID
		}
		fmt.Fprintf(out, "  [%d] %s (%.4f)\n", i+1, title, v.Score)
		fmt.Fprintf(out, "      id: %s\n", v.ID)
	}
	return nil
}
