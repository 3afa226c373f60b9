package ranking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ETAnderson/dealboard/internal/domain"
)

type SortKey string

const (
	SortPriceAscending             SortKey = "price_ascending"
	SortRatingDescending           SortKey = "rating_descending"
	SortOfferCountDescending       SortKey = "offer_count_descending"
	SortGamingScoreDescending      SortKey = "gaming_score_descending"
	SortAntutuDescending           SortKey = "antutu_descending"
	SortCameraMegapixelsDescending SortKey = "camera_megapixels_descending"
	SortPerformanceScoreDescending SortKey = "performance_score_descending"
	SortRAMDescending              SortKey = "ram_descending"
	SortStorageDescending          SortKey = "storage_descending"
	SortOverallScoreDescending     SortKey = "overall_score_descending"
	SortHardnessAlphabetical       SortKey = "hardness_alphabetical"
	SortPageCountDescending        SortKey = "page_count_descending"
	SortPaperWeightDescending      SortKey = "paper_weight_descending"
)

// DefaultSortKey is used when a caller does not ask for an order.
const DefaultSortKey = SortPriceAscending

var ErrInvalidSortKey = errors.New("invalid sort key")

var commonKeys = []SortKey{
	SortPriceAscending,
	SortRatingDescending,
	SortOfferCountDescending,
}

var kindKeys = map[domain.Kind][]SortKey{
	domain.KindPhone: {
		SortGamingScoreDescending,
		SortAntutuDescending,
		SortCameraMegapixelsDescending,
	},
	domain.KindLaptop: {
		SortPerformanceScoreDescending,
		SortRAMDescending,
		SortStorageDescending,
	},
	domain.KindHeadphone: {
		SortOverallScoreDescending,
	},
	domain.KindPencil: {
		SortHardnessAlphabetical,
	},
	domain.KindSketchpad: {
		SortPageCountDescending,
		SortPaperWeightDescending,
	},
}

// SortKeysFor lists the keys recognised for kind. An empty kind (a mixed
// catalog) only gets the keys every kind shares.
func SortKeysFor(kind domain.Kind) []SortKey {
	extra := kindKeys[kind]
	out := make([]SortKey, 0, len(commonKeys)+len(extra))
	out = append(out, commonKeys...)
	out = append(out, extra...)
	return out
}

// ParseSortKey resolves a caller-supplied key against kind. Blank input
// resolves to DefaultSortKey.
func ParseSortKey(kind domain.Kind, raw string) (SortKey, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultSortKey, nil
	}

	key := SortKey(raw)
	if !key.ValidFor(kind) {
		return "", invalidSortKey(kind, key)
	}
	return key, nil
}

func (k SortKey) ValidFor(kind domain.Kind) bool {
	for _, known := range SortKeysFor(kind) {
		if k == known {
			return true
		}
	}
	return false
}

func invalidSortKey(kind domain.Kind, key SortKey) error {
	if kind == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSortKey, string(key))
	}
	return fmt.Errorf("%w: %q is not recognised for %s", ErrInvalidSortKey, string(key), kind)
}
