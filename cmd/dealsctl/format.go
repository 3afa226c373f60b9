package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ETAnderson/dealboard/internal/ranking"
)

// printRankedTable prints ranked items as cards with one line per offer.
func printRankedTable(w io.Writer, items []ranking.RankedItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no items")
		return
	}

	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, " %d. %s\n", i+1, it.Name)

		line := fmt.Sprintf("    From: %s  |  Best rating: %.1f", formatPrice(it.MinPrice), it.MaxRating)
		if it.Category != "" {
			line += "  |  Category: " + it.Category
		}
		fmt.Fprintln(w, line)

		for _, o := range it.Offers {
			var tags []string
			if o.IsBestDeal {
				tags = append(tags, "[BEST DEAL]")
			}
			if o.IsTopRated {
				tags = append(tags, "[TOP RATED]")
			}
			row := fmt.Sprintf("    - %-16s %10s  %.1f (%d reviews) %s",
				o.Merchant, formatPrice(o.Price), o.Rating, o.Reviews, strings.Join(tags, " "))
			fmt.Fprintln(w, strings.TrimRight(row, " "))
		}
	}
}

// formatPrice renders 1234567.5 as "1,234,567.50".
func formatPrice(p float64) string {
	s := fmt.Sprintf("%.2f", p)
	intPart, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
