// Package ranking orders catalog items by their merchant offers and marks the
// best-deal and top-rated offers of each item.
//
// Everything here is a pure function of its arguments: no I/O, no shared
// state, inputs are never modified. Callers may rank the same snapshot from
// many goroutines at once.
package ranking

import (
	"slices"
	"strings"

	"github.com/ETAnderson/dealboard/internal/domain"
)

// AllCategories is the category filter value that lets every item through.
const AllCategories = "All"

type Query struct {
	// Kind selects the sort keys that are accepted. Leave empty for a
	// catalog mixing several kinds.
	Kind domain.Kind

	Sort SortKey

	// Search is matched case-insensitively as a substring of the item name,
	// after trimming surrounding whitespace.
	Search string

	// Category must equal the item category exactly; "" and AllCategories
	// disable the filter.
	Category string

	// Limit keeps the first Limit ranked items; <= 0 keeps all.
	Limit int
}

type RankedOffer struct {
	domain.Offer
	IsBestDeal bool `json:"is_best_deal"`
	IsTopRated bool `json:"is_top_rated"`
}

// RankedItem is a catalog item plus the figures derived from its offers.
// Offers shadows the embedded item's offer list.
type RankedItem struct {
	domain.CatalogItem

	Offers    []RankedOffer `json:"offers"`
	MinPrice  float64       `json:"min_price"`
	MaxRating float64       `json:"max_rating"`
}

// Rank filters items by q.Search and q.Category, stable-sorts the survivors
// by q.Sort and annotates every offer. Items without offers rank with a
// min price and max rating of 0.
//
// The only failure is a sort key outside the enumeration for q.Kind, which
// wraps ErrInvalidSortKey.
func Rank(items []domain.CatalogItem, q Query) ([]RankedItem, error) {
	compare, ok := strategies[q.Sort]
	if !ok || !q.Sort.ValidFor(q.Kind) {
		return nil, invalidSortKey(q.Kind, q.Sort)
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]RankedItem, 0, len(items))
	for _, it := range items {
		if needle != "" && !strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		if !matchesCategory(it.Category, q.Category) {
			continue
		}
		out = append(out, summarize(it))
	}

	slices.SortStableFunc(out, compare)

	for i := range out {
		annotate(&out[i])
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out, nil
}

func matchesCategory(itemCategory, filter string) bool {
	if filter == "" || filter == AllCategories {
		return true
	}
	return itemCategory == filter
}

func summarize(it domain.CatalogItem) RankedItem {
	ri := RankedItem{
		CatalogItem: it,
		Offers:      make([]RankedOffer, len(it.Offers)),
	}

	for i, o := range it.Offers {
		ri.Offers[i] = RankedOffer{Offer: o}

		if i == 0 || o.Price < ri.MinPrice {
			ri.MinPrice = o.Price
		}
		if i == 0 || o.Rating > ri.MaxRating {
			ri.MaxRating = o.Rating
		}
	}

	return ri
}

// annotate flags every offer tied at the item's minimum price or maximum
// rating; several offers can carry the same badge.
func annotate(ri *RankedItem) {
	for i := range ri.Offers {
		ri.Offers[i].IsBestDeal = ri.Offers[i].Price == ri.MinPrice
		ri.Offers[i].IsTopRated = ri.Offers[i].Rating == ri.MaxRating
	}
}
