package logging

import (
	"github.com/rs/zerolog"
)

// ContextHook copies the correlation ids set with WithRequestID and WithTaskID
// onto events logged with Ctx.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	f, ok := ctx.Value(fieldsKey{}).(fields)
	if !ok {
		return
	}
	if f.requestID != "" {
		e.Str("request_id", f.requestID)
	}
	if f.taskID != "" {
		e.Str("task_id", f.taskID)
	}
}
