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

package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dirpx.dev/serx/logger"
)

func TestNewZapLogger_LevelsAndFormat(t *testing.T) {
	tests := []struct {
		name   string
		level  logger.LogLevel
		format logger.LogFormat
		log    func(logger.Logger)
		want   bool
	}{
		{"debug shown at debug", logger.DebugLevel, logger.JSONFormat, func(l logger.Logger) { l.Debug("m") }, true},
		{"debug hidden at info", logger.InfoLevel, logger.JSONFormat, func(l logger.Logger) { l.Debug("m") }, false},
		{"warn shown at warn", logger.WarnLevel, logger.TextFormat, func(l logger.Logger) { l.Warn("m") }, true},
		{"info hidden at error", logger.ErrorLevel, logger.JSONFormat, func(l logger.Logger) { l.Info("m") }, false},
		{"invalid level means info", "bogus", logger.JSONFormat, func(l logger.Logger) { l.Info("m") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.NewZapLogger(logger.Config{Level: tt.level, Format: tt.format, Output: &buf})
			if err != nil {
				t.Fatalf("NewZapLogger() error = %v", err)
			}
			tt.log(l)
			_ = l.Sync()
			if got := buf.Len() > 0; got != tt.want {
				t.Fatalf("output present = %v, want %v (%q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestZapLogger_JSONFieldsAndScope(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.NewZapLogger(logger.Config{Level: logger.DebugLevel, Format: logger.JSONFormat, Output: &buf})
	ctx := logger.ContextWithScope(context.Background(), "shop")
	l.With("configuration", "billing").WithContext(ctx).Info("registered", "type", "Order")
	_ = l.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	for k, want := range map[string]string{"message": "registered", "configuration": "billing", "scope": "shop", "type": "Order"} {
		if entry[k] != want {
			t.Fatalf("%s = %v, want %s", k, entry[k], want)
		}
	}
}

func TestNewFromZap_Observer(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := logger.NewFromZap(zap.New(core))
	l.Info("dropped")
	l.Warn("collision", "type", "Order")
	if logs.Len() != 1 || logs.All()[0].Message != "collision" {
		t.Fatalf("observed = %+v", logs.All())
	}
	logger.NewNop().Error("nothing")
}

func TestParse(t *testing.T) {
	if lvl, err := logger.ParseLogLevel(" WARNING "); err != nil || lvl != logger.WarnLevel {
		t.Fatalf("ParseLogLevel = %v, %v", lvl, err)
	}
	if _, err := logger.ParseLogLevel("loud"); err == nil || !strings.Contains(err.Error(), "loud") {
		t.Fatalf("ParseLogLevel(loud) = %v", err)
	}
	if f, err := logger.ParseLogFormat("console"); err != nil || f != logger.TextFormat {
		t.Fatalf("ParseLogFormat = %v, %v", f, err)
	}
	if _, err := logger.ParseLogFormat("xml"); err == nil {
		t.Fatalf("ParseLogFormat(xml) must fail")
	}
}

func TestZapLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.NewZapLogger(logger.Config{Level: logger.InfoLevel, Format: logger.TextFormat, Output: &buf})
	l.WithContext(logger.ContextWithScope(context.Background(), "shop")).Warn("collision", "type", "Order")
	_ = l.Sync()

	line := buf.String()
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("text format produced JSON: %q", line)
	}
	for _, want := range []string{"warn", "collision", `"scope": "shop"`, `"type": "Order"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("output %q lacks %q", line, want)
		}
	}
}
