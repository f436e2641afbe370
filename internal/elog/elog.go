// Package elog provides the tagged, contextual logger used by every
// long-lived component of the node: the chain store, the UTXO store, the
// mempool, the orphan buffer, the address book, each peer connection, the
// server loop and the RPC surface all construct their own logger with
// New(component, ...) rather than reaching for a package-level global.
package elog

import (
	"go.uber.org/zap"
)

// Logger is a thin, contextual wrapper around zap's sugared logger. Call
// sites pass alternating key/value pairs after the message, matching the
// convention used throughout the node: logger.Info("applied block", "hash",
// hash, "height", height).
type Logger struct {
	sugar     *zap.SugaredLogger
	component string
}

var base *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	l, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than panic during package init.
		l = zap.NewNop()
	}
	base = l
}

// New returns a Logger tagged with component, carrying any baseline
// key/value context supplied up front (e.g. a data directory or peer id).
func New(component string, kv ...interface{}) *Logger {
	fields := append([]interface{}{"component", component}, kv...)
	return &Logger{sugar: base.Sugar().With(fields...), component: component}
}

// With returns a derived Logger carrying additional baseline context.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(kv...), component: l.component}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.sugar.Sync() }
