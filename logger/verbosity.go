package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // No flags: progress summary, warnings and errors
	VerbosityInfo  = 1 // -v: + per-module and per-file progress
	VerbosityDebug = 2 // -vv: + per-type extraction and resolution details
)

// VerbosityToLevel maps verbosity flags (-v, -vv) and --quiet to zap log levels
//
// Mapping:
//
//	quiet     -> ErrorLevel
//	0 (none)  -> InfoLevel
//	1 (-v)    -> DebugLevel
//	2+ (-vv)  -> DebugLevel
func VerbosityToLevel(verbosity int, quiet bool) zapcore.Level {
	if quiet {
		return zapcore.ErrorLevel
	}
	switch verbosity {
	case VerbosityUser:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "User"
	case VerbosityInfo:
		return "Info (-v)"
	default:
		return "Debug (-vv)"
	}
}
