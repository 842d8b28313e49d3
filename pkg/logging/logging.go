// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging is the leveled logger shared by the report-signing
// packages. Entries go either to a built-in line writer or to zap.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Level is a log severity. Entries below a logger's level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent drops every entry.
	LevelSilent
)

var levelNames = [...]string{"debug", "info", "warn", "error", "silent"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelSilent {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel maps a configured level name to a Level. Unrecognized names
// yield LevelInfo; config validation rejects them before they get here.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "off", "none":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Format selects how entries are rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// ParseFormat maps "json" to FormatJSON and everything else to FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Logger is what the generation, packaging, fault and verification
// packages log through.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})

	// WithField returns a child logger stamping key on every entry.
	WithField(key string, value interface{}) Logger
	// WithFields returns a child logger stamping all of fields.
	WithFields(fields map[string]interface{}) Logger
}

// Discard returns a Logger that drops every entry.
func Discard() Logger {
	return newLineLogger(LevelSilent, FormatText, io.Discard)
}

// EnsureLogger returns l, or a discarding logger when l is nil. Library
// callers that configure no logger get no output.
func EnsureLogger(l Logger) Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// New builds the logger selected by backend ("default" or "zap"). The
// built-in backend writes to stdout when out is nil, zap to stderr.
func New(backend string, level Level, format Format, out io.Writer) (Logger, error) {
	switch backend {
	case "", "default":
		if out == nil {
			out = os.Stdout
		}
		return newLineLogger(level, format, out), nil
	case "zap":
		return NewZapLogger(level, format, out)
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
