package logger

import (
	"go.uber.org/zap"
)

// Standard field names for structured logging across zorsh-gen.
// Use these constants instead of raw strings to keep log queries stable.
const (
	// Components
	FieldComponent = "component"

	// Source model
	FieldModule = "module"
	FieldType   = "type"
	FieldField  = "field"
	FieldFile   = "file"
	FieldDir    = "dir"

	// Counts
	FieldCount   = "count"
	FieldTypes   = "types"
	FieldModules = "modules"
	FieldImports = "imports"
	FieldFiles   = "files"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
	FieldHint  = "hint"

	// Configuration
	FieldConfig    = "config"
	FieldStructure = "structure"
	FieldPolicy    = "policy"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Converter struct {
//	    log *zap.SugaredLogger
//	}
//
//	func New() *Converter {
//	    return &Converter{log: logger.ComponentLogger("convert")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ModuleLogger returns a child logger carrying the module path field.
func ModuleLogger(l *zap.SugaredLogger, module string) *zap.SugaredLogger {
	return l.With(FieldModule, module)
}
