package logging

import (
	"maps"

	"github.com/MarcosDelSer/laya-backbone-sub005/pkg/interfaces"
)

// WithFields returns a logger carrying the given structured fields when the
// provider supports the FieldsLogger extension, and the logger unchanged
// otherwise. The fields map is copied, so callers may reuse it.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}
	return logger
}
