package domain

import (
	"strings"
	"time"
)

type Kind string

const (
	KindProduct   Kind = "product"
	KindPhone     Kind = "phone"
	KindLaptop    Kind = "laptop"
	KindHeadphone Kind = "headphone"
	KindPencil    Kind = "pencil"
	KindSketchpad Kind = "sketchpad"
)

var kinds = []Kind{KindProduct, KindPhone, KindLaptop, KindHeadphone, KindPencil, KindSketchpad}

// Kinds returns every catalog kind in display order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind accepts the singular kind name, case-insensitively.
func ParseKind(raw string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

type CatalogItem struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Image       string   `json:"image,omitempty"`
	Description []string `json:"description,omitempty"`

	Specs Specs `json:"specs"`

	Offers []Offer `json:"offers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Specs carries the category-specific fields. Only the fields belonging to
// the item's kind are populated; the rest stay zero.
type Specs struct {
	// phone
	GamingScore float64 `json:"gaming_score,omitempty"`
	Antutu      int64   `json:"antutu,omitempty"`
	Camera      string  `json:"camera,omitempty"`
	Battery     string  `json:"battery,omitempty"`
	Chipset     string  `json:"chipset,omitempty"`

	// phone, laptop
	Display string `json:"display,omitempty"`

	// laptop
	Processor        string  `json:"processor,omitempty"`
	RAM              int     `json:"ram,omitempty"`
	Storage          string  `json:"storage,omitempty"`
	PerformanceScore float64 `json:"performance_score,omitempty"`

	// headphone, sketchpad
	Type string `json:"type,omitempty"`

	// headphone
	Connectivity      string  `json:"connectivity,omitempty"`
	Impedance         float64 `json:"impedance,omitempty"`
	FrequencyResponse string  `json:"frequency_response,omitempty"`
	OverallScore      float64 `json:"overall_score,omitempty"`

	// pencil
	Hardness string `json:"hardness,omitempty"`
	Material string `json:"material,omitempty"`
	Shape    string `json:"shape,omitempty"`
	Color    string `json:"color,omitempty"`
	Erasable string `json:"erasable,omitempty"`

	// sketchpad
	Size      string `json:"size,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	PaperGSM  int    `json:"paper_gsm,omitempty"`
	Binding   string `json:"binding,omitempty"`
}
