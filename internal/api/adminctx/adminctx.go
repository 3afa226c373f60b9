package adminctx

import "context"

type ctxKeySubject struct{}

// DevSubject is the subject used when a dev request carries no token.
const DevSubject = "dev-admin"

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject{}, subject)
}

func Subject(ctx context.Context) string {
	v := ctx.Value(ctxKeySubject{})
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return DevSubject
}
