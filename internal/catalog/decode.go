package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ETAnderson/dealboard/internal/domain"
)

// DecodeItem parses an admin write body into a CatalogItem of the given
// kind. Unknown keys are ignored. Strings are trimmed and empty
// description lines dropped; ID, kind and timestamps in the body are not
// trusted.
func DecodeItem(kind domain.Kind, body []byte) (domain.CatalogItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return domain.CatalogItem{}, fmt.Errorf("empty body")
	}

	var it domain.CatalogItem
	if err := json.Unmarshal(body, &it); err != nil {
		return domain.CatalogItem{}, err
	}

	it.ID = ""
	it.Kind = kind
	it.CreatedAt = time.Time{}
	it.UpdatedAt = time.Time{}
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	it.Image = strings.TrimSpace(it.Image)

	desc := it.Description[:0:0]
	for _, line := range it.Description {
		if line = strings.TrimSpace(line); line != "" {
			desc = append(desc, line)
		}
	}
	it.Description = desc

	for i := range it.Offers {
		it.Offers[i].Merchant = strings.TrimSpace(it.Offers[i].Merchant)
		it.Offers[i].URL = strings.TrimSpace(it.Offers[i].URL)
	}
	if it.Offers == nil {
		it.Offers = []domain.Offer{}
	}

	trimSpecs(&it.Specs)
	return it, nil
}

func trimSpecs(s *domain.Specs) {
	for _, p := range []*string{
		&s.Camera, &s.Battery, &s.Chipset, &s.Display,
		&s.Processor, &s.Storage,
		&s.Type, &s.Connectivity, &s.FrequencyResponse,
		&s.Hardness, &s.Material, &s.Shape, &s.Color, &s.Erasable,
		&s.Size, &s.Binding,
	} {
		*p = strings.TrimSpace(*p)
	}
}
