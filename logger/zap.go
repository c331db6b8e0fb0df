/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel names the minimum severity a configuration logs.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// LogFormat selects the zap encoder.
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

var (
	zapLevels = map[LogLevel]zapcore.Level{
		DebugLevel: zapcore.DebugLevel,
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
	}
	levelAliases = map[string]LogLevel{
		"debug": DebugLevel, "info": InfoLevel,
		"warn": WarnLevel, "warning": WarnLevel,
		"error": ErrorLevel,
	}
	formatAliases = map[string]LogFormat{
		"json": JSONFormat, "text": TextFormat, "console": TextFormat,
	}
)

// Config describes the logger built from serx settings.
// Unknown levels fall back to info; a nil Output writes to stderr.
type Config struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// ZapLogger adapts a sugared zap logger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger builds a zap core from cfg.
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	level, ok := zapLevels[cfg.Level]
	if !ok {
		level = zapcore.InfoLevel
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey, ec.MessageKey = "timestamp", "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	enc := zapcore.NewJSONEncoder(ec)
	if cfg.Format == TextFormat {
		enc = zapcore.NewConsoleEncoder(ec)
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return NewFromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))), nil
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(l *zap.Logger) *ZapLogger { return &ZapLogger{sugar: l.Sugar()} }

// NewNop returns a logger that discards everything.
func NewNop() *ZapLogger { return NewFromZap(zap.NewNop()) }

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *ZapLogger) With(args ...any) Logger { return &ZapLogger{sugar: l.sugar.With(args...)} }

// WithContext tags the logger with the configuration scope stored in ctx.
func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	if scope := scopeFromContext(ctx); scope != "" {
		return l.With("scope", scope)
	}
	return l
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }

// ParseLogLevel accepts the level names used in serx settings, case-insensitively.
func ParseLogLevel(s string) (LogLevel, error) {
	if lvl, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl, nil
	}
	return "", fmt.Errorf("invalid log level: %s", s)
}

// ParseLogFormat accepts "json", "text" or "console".
func ParseLogFormat(s string) (LogFormat, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("invalid log format: %s", s)
}
