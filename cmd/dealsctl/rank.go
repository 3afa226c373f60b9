package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ETAnderson/dealboard/internal/domain"
	"github.com/ETAnderson/dealboard/internal/ranking"
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a catalog JSON file the way the list endpoint does",
		Args:  cobra.NoArgs,
		RunE:  runRank,
	}

	cmd.Flags().String("file", "", "Path to a JSON array of catalog items (- for stdin)")
	cmd.Flags().String("kind", "", "Catalog kind; empty ranks a mixed catalog with the common keys")
	cmd.Flags().String("sort", "", "Sort key (default price_ascending)")
	cmd.Flags().String("q", "", "Case-insensitive name search")
	cmd.Flags().String("category", "", "Exact category, or All")
	cmd.Flags().Int("limit", 0, "Keep the top N items (0 keeps all)")
	cmd.Flags().String("format", "table", "Output format: table, json")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	rawKind, _ := cmd.Flags().GetString("kind")
	rawSort, _ := cmd.Flags().GetString("sort")
	search, _ := cmd.Flags().GetString("q")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	var kind domain.Kind
	if rawKind != "" {
		k, ok := domain.ParseKind(rawKind)
		if !ok {
			return fmt.Errorf("unknown kind %q", rawKind)
		}
		kind = k
	}

	sortKey, err := ranking.ParseSortKey(kind, rawSort)
	if err != nil {
		return err
	}

	items, err := readCatalog(cmd.InOrStdin(), file)
	if err != nil {
		return err
	}
	if kind != "" {
		items = ofKind(items, kind)
	}

	ranked, err := ranking.Rank(items, ranking.Query{
		Kind:     kind,
		Sort:     sortKey,
		Search:   search,
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	case "table":
		printRankedTable(out, ranked)
		return nil
	default:
		return fmt.Errorf("unknown format %q (use table or json)", format)
	}
}

func readCatalog(stdin io.Reader, path string) ([]domain.CatalogItem, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var items []domain.CatalogItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return items, nil
}

// ofKind keeps items of kind; items without a kind are assumed to match.
func ofKind(items []domain.CatalogItem, kind domain.Kind) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if it.Kind == "" || it.Kind == kind {
			it.Kind = kind
			out = append(out, it)
		}
	}
	return out
}
