package logging

import "context"

// fields are the correlation ids carried through a context. They are stored
// as one value so the hook does a single lookup per event.
type fields struct {
	requestID string
	taskID    string
}

type fieldsKey struct{}

func fieldsFrom(ctx context.Context) fields {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	return f
}

// WithRequestID tags ctx with the id sent as X-Request-ID to the task store.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = requestID
	return context.WithValue(ctx, fieldsKey{}, f)
}

// WithTaskID tags ctx with the task an operation targets.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	f := fieldsFrom(ctx)
	f.taskID = taskID
	return context.WithValue(ctx, fieldsKey{}, f)
}

func GetRequestID(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

func GetTaskID(ctx context.Context) string {
	return fieldsFrom(ctx).taskID
}
