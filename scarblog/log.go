// Package scarblog is the diagnostics sink every component funnels
// through (§4.J point 4, §5 "console diagnostics are funneled through a
// single sink"). It keeps the shape of the teacher's log/logger.go
// (a small wrapper exposing Logln/Logf/prefixed-line helpers) but backs
// it with a structured zap logger so that diagnostics carry the §7
// category code and optional span as fields rather than free text.
package scarblog

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a minimal wrapper around a zap.Logger, mirroring the
// teacher's io.Writer-backed Logger but emitting structured lines.
type Logger struct {
	z *zap.Logger
}

// New returns a Logger that writes structured JSON lines to w, suitable
// for a UI/CLI collaborator to consume per line (§6.4).
func New(w io.Writer) *Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel)
	return &Logger{z: zap.New(core)}
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Logln logs an informational line, matching the teacher's Logln.
func (l *Logger) Logln(args ...interface{}) {
	l.z.Sugar().Infoln(args...)
}

// Logf logs a formatted informational line, matching the teacher's Logf.
func (l *Logger) Logf(format string, args ...interface{}) {
	l.z.Sugar().Infof(format, args...)
}

// LogScarbfln logs a formatted line tagged with the "scarb: " prefix,
// matching the teacher's LogDepfln.
func (l *Logger) LogScarbfln(format string, args ...interface{}) {
	l.z.Sugar().Infof("scarb: "+format, args...)
}

// Diagnostic logs a structured diagnostic: category code, message, and
// optional span fields (§7 user-visible behavior).
func (l *Logger) Diagnostic(code, message string, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("code", code)}, fields...)
	l.z.Warn(message, all...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }
