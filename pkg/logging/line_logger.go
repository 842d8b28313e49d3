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

package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var _ Logger = (*lineLogger)(nil)

// lineLogger writes one formatted line per entry. Children created with
// WithField share the parent's writer and lock so concurrent report builds
// never interleave partial lines.
type lineLogger struct {
	mu     *sync.Mutex
	level  Level
	out    io.Writer
	format formatter
	fields []field
	now    func() time.Time
}

func newLineLogger(level Level, format Format, out io.Writer) *lineLogger {
	l := &lineLogger{
		mu:     &sync.Mutex{},
		level:  level,
		out:    out,
		format: textFormatter{},
		now:    time.Now,
	}
	if format == FormatJSON {
		l.format = jsonFormatter{}
	}
	return l
}

func (l *lineLogger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args) }
func (l *lineLogger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args) }
func (l *lineLogger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args) }
func (l *lineLogger) Error(format string, args ...interface{}) { l.log(LevelError, format, args) }

func (l *lineLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields merges fields over the ones already carried; later keys win.
func (l *lineLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for _, f := range l.fields {
		merged[f.key] = f.value
	}
	for k, v := range fields {
		merged[k] = v
	}
	child := *l
	child.fields = sortedFields(merged)
	return &child
}

func (l *lineLogger) log(level Level, format string, args []interface{}) {
	if level < l.level {
		return
	}
	line := l.format.format(entry{
		time:   l.now(),
		level:  level,
		msg:    fmt.Sprintf(format, args...),
		fields: l.fields,
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}
