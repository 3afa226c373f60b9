// Package clicks records outbound offer clicks, either straight into the
// store or through a Kafka topic drained by the worker.
package clicks

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ETAnderson/dealboard/internal/domain"
)

// ClickEvent is the wire form of one click on the click topic.
type ClickEvent struct {
	ItemName string    `json:"item_name" validate:"required"`
	Merchant string    `json:"merchant" validate:"required"`
	URL      string    `json:"url" validate:"required"`
	At       time.Time `json:"at"`
}

func (e ClickEvent) Key() domain.ClickKey {
	return domain.ClickKey{ItemName: e.ItemName, Merchant: e.Merchant, URL: e.URL}
}

// Counter is the slice of state.Store the click path needs.
type Counter interface {
	IncrementClick(ctx context.Context, key domain.ClickKey) error
}

type Recorder interface {
	Record(ctx context.Context, ev ClickEvent) error
}

type Logger interface {
	Printf(format string, v ...any)
}

var validate = validator.New()

// Normalize trims the event fields and stamps At when missing.
func Normalize(ev ClickEvent, now time.Time) ClickEvent {
	ev.ItemName = strings.TrimSpace(ev.ItemName)
	ev.Merchant = strings.TrimSpace(ev.Merchant)
	ev.URL = strings.TrimSpace(ev.URL)
	if ev.At.IsZero() {
		ev.At = now.UTC()
	}
	return ev
}

// Validate reports whether every key field is present.
func Validate(ev ClickEvent) error {
	return validate.Struct(ev)
}

// StoreRecorder increments the counter synchronously.
type StoreRecorder struct {
	Store Counter
}

func (r StoreRecorder) Record(ctx context.Context, ev ClickEvent) error {
	return r.Store.IncrementClick(ctx, ev.Key())
}
