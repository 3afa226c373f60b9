package ranking

import (
	"cmp"
)

// compareFunc orders two ranked items; negative means a sorts first.
type compareFunc func(a, b RankedItem) int

// strategies maps every sort key to its comparator. Rank sorts stably, so
// a comparator returning 0 keeps input order.
var strategies = map[SortKey]compareFunc{
	SortPriceAscending: func(a, b RankedItem) int {
		return cmp.Compare(a.MinPrice, b.MinPrice)
	},
	SortRatingDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.MaxRating, a.MaxRating)
	},
	SortOfferCountDescending: func(a, b RankedItem) int {
		return cmp.Compare(len(b.Offers), len(a.Offers))
	},
	SortGamingScoreDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.GamingScore, a.Specs.GamingScore)
	},
	SortAntutuDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.Antutu, a.Specs.Antutu)
	},
	SortCameraMegapixelsDescending: func(a, b RankedItem) int {
		return cmp.Compare(cameraMegapixels(b.Specs.Camera), cameraMegapixels(a.Specs.Camera))
	},
	SortPerformanceScoreDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.PerformanceScore, a.Specs.PerformanceScore)
	},
	SortRAMDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.RAM, a.Specs.RAM)
	},
	SortStorageDescending: func(a, b RankedItem) int {
		return cmp.Compare(firstNumber(b.Specs.Storage), firstNumber(a.Specs.Storage))
	},
	SortOverallScoreDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.OverallScore, a.Specs.OverallScore)
	},
	SortHardnessAlphabetical: func(a, b RankedItem) int {
		return cmp.Compare(a.Specs.Hardness, b.Specs.Hardness)
	},
	SortPageCountDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.PageCount, a.Specs.PageCount)
	},
	SortPaperWeightDescending: func(a, b RankedItem) int {
		return cmp.Compare(b.Specs.PaperGSM, a.Specs.PaperGSM)
	},
}
