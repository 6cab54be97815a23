package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldSeed      = "seed"
	FieldPath      = "path"
	FieldRows      = "rows"
	FieldBackend   = "backend"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldOperation = "operation"
	FieldArtifact  = "artifact"
	FieldTotal     = "total"
	FieldExcluded  = "excluded"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentDataset   = "dataset"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentDashboard = "dashboard"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpGenerate = "generate"
	OpWrite    = "write"
	OpLoad     = "load"
	OpSnapshot = "snapshot"
	OpPublish  = "publish"
	OpRender   = "render"
	OpWatch    = "watch"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeIO            = "io_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeMalformed     = "malformed_artifact"
	ErrorTypeEmptyInput    = "empty_aggregation_input"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRun adds the run identifier and the seed it was started with
func (f LogFields) WithRun(runID string, seed int64) LogFields {
	f[FieldRunID] = runID
	f[FieldSeed] = seed
	return f
}

// WithArtifact adds the artifact name, its path and row count
func (f LogFields) WithArtifact(name, path string, rows int) LogFields {
	f[FieldArtifact] = name
	f[FieldPath] = path
	f[FieldRows] = rows
	return f
}

// ToSlice converts LogFields to a key-sorted slice for slog
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
