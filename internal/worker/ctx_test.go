package worker

import (
	"context"
	"testing"
)

func TestTaskNameRoundTrip(t *testing.T) {
	ctx := WithTaskName(context.Background(), "idempotency-purge")
	if got := TaskName(ctx); got != "idempotency-purge" {
		t.Fatalf("unexpected task name: %q", got)
	}
	if got := TaskName(WithTaskName(context.Background(), "")); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}
