package ranking

import "github.com/ETAnderson/dealboard/internal/domain"

// Categories returns AllCategories followed by each distinct non-empty
// category in first-seen order.
func Categories(items []domain.CatalogItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := []string{AllCategories}

	for _, it := range items {
		if it.Category == "" || it.Category == AllCategories {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}

	return out
}
