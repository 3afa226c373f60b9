package catalog

import (
	"testing"

	"github.com/ETAnderson/dealboard/internal/domain"
)

func validPhone() domain.CatalogItem {
	return domain.CatalogItem{
		Kind:  domain.KindPhone,
		Name:  "Pixel 9",
		Image: "https://img.example.com/pixel.jpg",
		Specs: domain.Specs{
			GamingScore: 8.5,
			Antutu:      1200000,
			Camera:      "50MP + 48MP",
			Battery:     "4700 mAh",
			Display:     "6.3 OLED",
			Chipset:     "Tensor G4",
		},
		Offers: []domain.Offer{
			{Merchant: "Amazon", Price: 699, URL: "https://amazon.example/p", Rating: 4.6, Reviews: 120},
		},
	}
}

func hasIssue(res ValidationResult, path, code string) bool {
	for _, is := range res.Issues {
		if is.Path == path && is.Code == code {
			return true
		}
	}
	return false
}

func TestValidateItem_ValidPhone(t *testing.T) {
	res := ValidateItem(validPhone())
	if !res.IsValid() {
		t.Fatalf("expected valid, got %#v", res.Issues)
	}
}

func TestValidateItem_ZeroOffersAllowed(t *testing.T) {
	it := validPhone()
	it.Offers = nil
	if res := ValidateItem(it); !res.IsValid() {
		t.Fatalf("expected valid, got %#v", res.Issues)
	}
}

func TestValidateItem_BaseAndOfferIssues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(it *domain.CatalogItem)
		wantPath string
		wantCode string
	}{
		{"missing name", func(it *domain.CatalogItem) { it.Name = "  " }, "name", "required"},
		{"missing image", func(it *domain.CatalogItem) { it.Image = "" }, "image", "required"},
		{"missing merchant", func(it *domain.CatalogItem) { it.Offers[0].Merchant = "" }, "offers[0].merchant", "required"},
		{"missing url", func(it *domain.CatalogItem) { it.Offers[0].URL = "" }, "offers[0].url", "required"},
		{"relative url", func(it *domain.CatalogItem) { it.Offers[0].URL = "/p/1" }, "offers[0].url", "invalid_url"},
		{"negative price", func(it *domain.CatalogItem) { it.Offers[0].Price = -1 }, "offers[0].price", "out_of_range"},
		{"rating above 5", func(it *domain.CatalogItem) { it.Offers[0].Rating = 5.5 }, "offers[0].rating", "out_of_range"},
		{"negative reviews", func(it *domain.CatalogItem) { it.Offers[0].Reviews = -3 }, "offers[0].reviews", "out_of_range"},
		{"second offer", func(it *domain.CatalogItem) {
			it.Offers = append(it.Offers, domain.Offer{Merchant: "B", URL: "https://b.example", Price: -2})
		}, "offers[1].price", "out_of_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := validPhone()
			tt.mutate(&it)

			res := ValidateItem(it)
			if !hasIssue(res, tt.wantPath, tt.wantCode) {
				t.Fatalf("expected %s/%s, got %#v", tt.wantPath, tt.wantCode, res.Issues)
			}
		})
	}
}

func TestValidateItem_KindSpecificSpecs(t *testing.T) {
	tests := []struct {
		kind      domain.Kind
		wantPaths []string
	}{
		{domain.KindPhone, []string{"specs.gaming_score", "specs.antutu", "specs.camera", "specs.battery", "specs.display", "specs.chipset"}},
		{domain.KindLaptop, []string{"specs.processor", "specs.ram", "specs.storage", "specs.display", "specs.performance_score"}},
		{domain.KindHeadphone, []string{"specs.type", "specs.connectivity", "specs.impedance", "specs.frequency_response", "specs.overall_score"}},
		{domain.KindPencil, []string{"specs.hardness", "specs.erasable"}},
		{domain.KindSketchpad, []string{"specs.size", "specs.page_count", "specs.paper_gsm", "specs.binding", "specs.type"}},
		{domain.KindProduct, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			it := domain.CatalogItem{Kind: tt.kind, Name: "x", Image: "https://i"}
			res := ValidateItem(it)

			if len(res.Issues) != len(tt.wantPaths) {
				t.Fatalf("expected %d issues, got %#v", len(tt.wantPaths), res.Issues)
			}
			for _, p := range tt.wantPaths {
				if !hasIssue(res, p, "required") {
					t.Fatalf("expected required issue for %s, got %#v", p, res.Issues)
				}
			}
		})
	}
}

func TestValidateItem_PencilErasableEnum(t *testing.T) {
	it := domain.CatalogItem{
		Kind:  domain.KindPencil,
		Name:  "Mono 100",
		Image: "https://i",
		Specs: domain.Specs{Hardness: "2B", Erasable: "maybe"},
	}
	if res := ValidateItem(it); !hasIssue(res, "specs.erasable", "invalid_enum") {
		t.Fatalf("expected invalid_enum, got %#v", res.Issues)
	}

	it.Specs.Erasable = "Yes"
	if res := ValidateItem(it); !res.IsValid() {
		t.Fatalf("expected valid, got %#v", res.Issues)
	}
}

func TestDecodeItem_NormalizesAndIgnoresServerFields(t *testing.T) {
	body := []byte(`{
		"id": "itm_forged",
		"kind": "laptop",
		"name": "  Pixel 9 ",
		"category": " Flagship ",
		"description": ["  fast ", "", "  "],
		"specs": {"camera": " 50MP "},
		"offers": [{"merchant": " Amazon ", "price": 699, "url": " https://a.example ", "rating": 4.5}],
		"created_at": "2020-01-01T00:00:00Z",
		"extra": true
	}`)

	it, err := DecodeItem(domain.KindPhone, body)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if it.ID != "" || it.Kind != domain.KindPhone || !it.CreatedAt.IsZero() {
		t.Fatalf("server fields not reset: %+v", it)
	}
	if it.Name != "Pixel 9" || it.Category != "Flagship" {
		t.Fatalf("strings not trimmed: %q %q", it.Name, it.Category)
	}
	if len(it.Description) != 1 || it.Description[0] != "fast" {
		t.Fatalf("unexpected description: %q", it.Description)
	}
	if it.Specs.Camera != "50MP" {
		t.Fatalf("specs not trimmed: %q", it.Specs.Camera)
	}
	if it.Offers[0].Merchant != "Amazon" || it.Offers[0].URL != "https://a.example" {
		t.Fatalf("offer not trimmed: %+v", it.Offers[0])
	}
}

func TestDecodeItem_Errors(t *testing.T) {
	for _, body := range []string{"", "   ", "{", "[]"} {
		if _, err := DecodeItem(domain.KindPhone, []byte(body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestDecodeItem_NilOffersBecomeEmpty(t *testing.T) {
	it, err := DecodeItem(domain.KindProduct, []byte(`{"name":"x"}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if it.Offers == nil {
		t.Fatalf("expected empty offers slice")
	}
}
