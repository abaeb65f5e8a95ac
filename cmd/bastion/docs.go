package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bastion-hq/gateway/pkg/cli"
	"bastion-hq/gateway/pkg/retrieval"
)

var docsFlags struct {
	topK            int
	minSimilarity   float64
	clearance       string
	searchClearance string
	searchFormat    string
	getFormat       string
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect the document corpus",
	Long: `Search and read the retrieval corpus the gateway augments prompts from.

The corpus is assembled exactly as at server startup: built-in documents,
the configured seed file, and documents persisted by earlier runs.`,
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the corpus",
	Long: `Rank documents by cosine similarity blended with keyword overlap.
Only documents classified at or below --clearance are returned.

Examples:
  bastion docs search "security policy"
  bastion docs search --clearance confidential "gateway architecture"
  bastion docs search --top-k 3 --min-similarity 0.5 --format json "data retention"`,
	Args: cobra.MinimumNArgs(1),
	RunE: searchDocs,
}

var docsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one document",
	Long: `Print a document if the given clearance ranks at or above its
classification (public < internal < confidential < secret).

Examples:
  bastion docs get doc1
  bastion docs get --clearance secret doc3`,
	Args: cobra.ExactArgs(1),
	RunE: getDoc,
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsSearchCmd, docsGetCmd)

	docsSearchCmd.Flags().IntVar(&docsFlags.topK, "top-k", retrieval.DefaultTopK, "maximum number of results")
	docsSearchCmd.Flags().Float64Var(&docsFlags.minSimilarity, "min-similarity", 0, "similarity floor (default: retrieval.search_min_similarity)")
	docsSearchCmd.Flags().StringVar(&docsFlags.searchClearance, "clearance", string(retrieval.Public), "caller clearance level")
	docsSearchCmd.Flags().StringVar(&docsFlags.searchFormat, "format", "text", "output format: text, json, csv")

	docsGetCmd.Flags().StringVar(&docsFlags.clearance, "clearance", string(retrieval.Public), "caller clearance level")
	docsGetCmd.Flags().StringVar(&docsFlags.getFormat, "format", "text", "output format: text, json")
}

// resultTable renders search results as rows.
type resultTable []retrieval.SearchResult

func (t resultTable) Header() []string {
	return []string{"ID", "TITLE", "CLASSIFICATION", "SIMILARITY", "RELEVANCE"}
}

func (t resultTable) Rows() [][]string {
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{
			r.Document.ID,
			r.Document.Metadata.Title,
			string(r.Document.Metadata.Classification),
			strconv.FormatFloat(r.Similarity, 'f', 4, 64),
			strconv.FormatFloat(r.RelevanceScore, 'f', 4, 64),
		}
	}
	return rows
}

// documentView prints a document for humans.
type documentView struct {
	retrieval.Document
}

func (d documentView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:             %s\n", d.ID)
	fmt.Fprintf(&b, "Title:          %s\n", d.Metadata.Title)
	fmt.Fprintf(&b, "Source:         %s\n", d.Metadata.Source)
	fmt.Fprintf(&b, "Classification: %s\n", d.Metadata.Classification)
	if len(d.Metadata.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:           %s\n", strings.Join(d.Metadata.Tags, ", "))
	}
	if !d.Metadata.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created:        %s\n", d.Metadata.CreatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "\n%s", d.Content)
	return b.String()
}

func searchDocs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(docsFlags.searchFormat)
	if err != nil {
		return err
	}
	if docsFlags.topK <= 0 {
		return cli.NewConfigError("top-k", "must be positive")
	}
	clearance, err := retrieval.ParseClassification(docsFlags.searchClearance)
	if err != nil {
		return cli.NewConfigError("clearance", err.Error())
	}

	return withDocumentStore(cmd.Context(), func(store *retrieval.Store, minSimilarity float64) error {
		if cmd.Flags().Changed("min-similarity") {
			minSimilarity = docsFlags.minSimilarity
		}

		results := store.SearchWithClearance(strings.Join(args, " "), docsFlags.topK, minSimilarity, clearance)

		var data any = resultTable(results)
		if format == cli.FormatJSON {
			for i := range results {
				results[i].Document.Embedding = nil
			}
			data = results
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
	})
}

func getDoc(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(docsFlags.getFormat)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewConfigError("format", "get supports text and json output")
	}
	clearance, err := retrieval.ParseClassification(docsFlags.clearance)
	if err != nil {
		return cli.NewConfigError("clearance", err.Error())
	}

	return withDocumentStore(cmd.Context(), func(store *retrieval.Store, _ float64) error {
		doc, err := store.GetDocument(args[0], clearance)
		if err != nil {
			return cli.NewCommandError("docs get", err)
		}

		var data any = documentView{doc}
		if format == cli.FormatJSON {
			doc.Embedding = nil
			data = doc
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
	})
}

// withDocumentStore assembles the configured corpus for the duration of fn.
// fn also receives the configured search similarity floor.
func withDocumentStore(ctx context.Context, fn func(store *retrieval.Store, minSimilarity float64) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, db, err := openDocumentStore(ctx, &cfg.Retrieval)
	if err != nil {
		return cli.NewCommandError("docs", err)
	}
	if db != nil {
		defer db.Close()
	}

	return fn(store, cfg.Retrieval.SearchMinSimilarity)
}
