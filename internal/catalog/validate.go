package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ETAnderson/dealboard/internal/domain"
)

type ValidationIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Issues []ValidationIssue `json:"issues"`
}

func (r ValidationResult) IsValid() bool {
	return len(r.Issues) == 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names in issue paths
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// offerList wraps the offers so validator reports "offers[i].field" paths.
type offerList struct {
	Offers []domain.Offer `json:"offers" validate:"dive"`
}

// ValidateItem checks the base fields, every offer and the specs required
// for the item's kind.
func ValidateItem(it domain.CatalogItem) ValidationResult {
	var res ValidationResult

	requireNonEmpty(&res, "name", it.Name)
	requireNonEmpty(&res, "image", it.Image)

	validateOffers(&res, it.Offers)

	s := it.Specs
	switch it.Kind {
	case domain.KindPhone:
		requirePositive(&res, "specs.gaming_score", s.GamingScore)
		requirePositive(&res, "specs.antutu", float64(s.Antutu))
		requireNonEmpty(&res, "specs.camera", s.Camera)
		requireNonEmpty(&res, "specs.battery", s.Battery)
		requireNonEmpty(&res, "specs.display", s.Display)
		requireNonEmpty(&res, "specs.chipset", s.Chipset)
	case domain.KindLaptop:
		requireNonEmpty(&res, "specs.processor", s.Processor)
		requirePositive(&res, "specs.ram", float64(s.RAM))
		requireNonEmpty(&res, "specs.storage", s.Storage)
		requireNonEmpty(&res, "specs.display", s.Display)
		requirePositive(&res, "specs.performance_score", s.PerformanceScore)
	case domain.KindHeadphone:
		requireNonEmpty(&res, "specs.type", s.Type)
		requireNonEmpty(&res, "specs.connectivity", s.Connectivity)
		requirePositive(&res, "specs.impedance", s.Impedance)
		requireNonEmpty(&res, "specs.frequency_response", s.FrequencyResponse)
		requirePositive(&res, "specs.overall_score", s.OverallScore)
	case domain.KindPencil:
		requireNonEmpty(&res, "specs.hardness", s.Hardness)
		if s.Erasable == "" {
			addIssue(&res, "specs.erasable", "required", "field is required")
		} else if err := validate.Var(s.Erasable, "oneof=Yes No"); err != nil {
			addIssue(&res, "specs.erasable", "invalid_enum", "erasable must be one of: Yes, No")
		}
	case domain.KindSketchpad:
		requireNonEmpty(&res, "specs.size", s.Size)
		requirePositive(&res, "specs.page_count", float64(s.PageCount))
		requirePositive(&res, "specs.paper_gsm", float64(s.PaperGSM))
		requireNonEmpty(&res, "specs.binding", s.Binding)
		requireNonEmpty(&res, "specs.type", s.Type)
	}

	return res
}

func validateOffers(res *ValidationResult, offers []domain.Offer) {
	err := validate.Struct(offerList{Offers: offers})
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		addIssue(res, "offers", "invalid", err.Error())
		return
	}

	for _, fe := range verrs {
		// Namespace is "offerList.offers[0].price"; drop the wrapper.
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		addIssue(res, path, issueCode(fe), issueMessage(fe))
	}
}

func issueCode(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "http_url":
		return "invalid_url"
	default:
		return "out_of_range"
	}
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "http_url":
		return "must be an absolute http(s) URL"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func requireNonEmpty(res *ValidationResult, path string, v string) {
	if strings.TrimSpace(v) == "" {
		addIssue(res, path, "required", "field is required")
	}
}

func requirePositive(res *ValidationResult, path string, v float64) {
	if v <= 0 {
		addIssue(res, path, "required", "field is required and must be > 0")
	}
}

func addIssue(res *ValidationResult, path string, code string, msg string) {
	res.Issues = append(res.Issues, ValidationIssue{
		Path:    path,
		Code:    code,
		Message: msg,
	})
}
