package worker

import "context"

type ctxKey string

const taskNameKey ctxKey = "worker_task_name"

// WithTaskName stores the periodic task name on the context.
func WithTaskName(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, taskNameKey, name)
}

// TaskName reads the task name from context.
func TaskName(ctx context.Context) string {
	v := ctx.Value(taskNameKey)
	s, _ := v.(string)
	return s
}
