package logger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// ANSI palette (gruvbox-ish, muted)
const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorTime   = "\x1b[38;5;108m"
	colorName   = "\x1b[38;5;208m"
	colorKey    = "\x1b[38;5;245m"
	colorWarn   = "\x1b[38;5;214m"
	colorWarnBg = "\x1b[48;5;58m"
	colorErr    = "\x1b[38;5;167m"
	colorErrBg  = "\x1b[48;5;88m"
	colorDebug  = "\x1b[38;5;109m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  convert  Generated module  module=pkg/item types=2"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	fields          []zapcore.Field
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	fields := make([]zapcore.Field, len(enc.fields))
	copy(fields, enc.fields)
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		fields:  fields,
	}
}

// AddString and friends are reached through logger.With(...); keep them so that
// context fields such as module=... show up in every line.
func (enc *minimalEncoder) AddString(key, value string) {
	enc.fields = append(enc.fields, zap.String(key, value))
}

func (enc *minimalEncoder) AddInt64(key string, value int64) {
	enc.fields = append(enc.fields, zap.Int64(key, value))
}

func (enc *minimalEncoder) AddUint64(key string, value uint64) {
	enc.fields = append(enc.fields, zap.Uint64(key, value))
}

func (enc *minimalEncoder) AddFloat64(key string, value float64) {
	enc.fields = append(enc.fields, zap.Float64(key, value))
}

func (enc *minimalEncoder) AddDuration(key string, value time.Duration) {
	enc.fields = append(enc.fields, zap.Duration(key, value))
}

func (enc *minimalEncoder) AddBool(key string, value bool) {
	enc.fields = append(enc.fields, zap.Bool(key, value))
}

func (enc *minimalEncoder) AddReflected(key string, value interface{}) error {
	enc.fields = append(enc.fields, zap.Any(key, value))
	return nil
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(colorTime)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only shown when it is not INFO
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorName)
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	all := make([]zapcore.Field, 0, len(enc.fields)+len(fields))
	all = append(all, enc.fields...)
	all = append(all, fields...)
	if rendered := renderFields(all); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return colorDebug + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarn + "WARN" + colorReset
	default:
		return colorBold + colorErrBg + colorErr + level.CapitalString() + colorReset
	}
}

// renderFields renders every field as key=value. Fields are never dropped.
func renderFields(fields []zapcore.Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Type == zapcore.SkipType {
			continue
		}
		parts = append(parts, colorKey+field.Key+"="+colorReset+fieldValue(field))
	}
	return strings.Join(parts, " ")
}

// fieldValue extracts the printable value from a zap field
func fieldValue(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type, zapcore.UintptrType:
		return fmt.Sprintf("%d", uint64(field.Integer))
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1)
	case zapcore.Float64Type:
		return fmt.Sprintf("%g", math.Float64frombits(uint64(field.Integer)))
	case zapcore.Float32Type:
		return fmt.Sprintf("%g", math.Float32frombits(uint32(field.Integer)))
	case zapcore.DurationType:
		return time.Duration(field.Integer).String()
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			return err.Error()
		}
		return ""
	case zapcore.StringerType:
		if s, ok := field.Interface.(fmt.Stringer); ok {
			return s.String()
		}
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}
	return field.String
}
