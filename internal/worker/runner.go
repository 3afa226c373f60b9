package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ETAnderson/dealboard/internal/state"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Runner calls Task once immediately and then every PollEvery until the
// context ends. A failing tick is logged and the loop keeps going.
type Runner struct {
	Name      string
	PollEvery time.Duration
	Task      func(ctx context.Context) error
	Log       Logger
}

func (r Runner) Run(ctx context.Context) error {
	if r.Task == nil {
		return errors.New("task is nil")
	}
	if r.PollEvery <= 0 {
		r.PollEvery = time.Minute
	}

	ctx = WithTaskName(ctx, r.Name)

	ticker := time.NewTicker(r.PollEvery)
	defer ticker.Stop()

	// one immediate pass
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r Runner) tick(ctx context.Context) {
	if err := r.Task(ctx); err != nil && r.Log != nil {
		r.Log.Printf("task %s failed: %v", r.Name, err)
	}
}

// PurgeIdempotency returns a Task that drops expired idempotency records.
func PurgeIdempotency(store state.Store, log Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		n, err := store.PurgeExpiredIdempotency(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if n > 0 && log != nil {
			log.Printf("purged %d expired idempotency records", n)
		}
		return nil
	}
}
