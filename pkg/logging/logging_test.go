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
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"loud":    LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.Equal(t, "silent", LevelSilent.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("xml"))
}

func TestNew_Backends(t *testing.T) {
	var buf bytes.Buffer
	for _, backend := range []string{"", "default", "zap"} {
		l, err := New(backend, LevelInfo, FormatText, &buf)
		require.NoError(t, err, backend)
		require.NotNil(t, l, backend)
	}
	_, err := New("syslog", LevelInfo, FormatText, &buf)
	assert.ErrorContains(t, err, "syslog")
}

func TestLineLogger_TextLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("default", LevelWarn, FormatText, &buf)
	require.NoError(t, err)

	l.Debug("scanning %s", "reports/doc1.xml")
	l.Info("packaged %d variants", 5)
	l.Warn("skipping %s", "stale.zip")
	l.Error("signing failed")

	assert.Equal(t, "WARN\tskipping stale.zip\nERROR\tsigning failed\n", buf.String())
}

func TestLineLogger_RunScopedFields(t *testing.T) {
	var buf bytes.Buffer
	root, err := New("default", LevelDebug, FormatText, &buf)
	require.NoError(t, err)

	run := root.WithField("run", "r-1")
	variant := run.WithFields(map[string]interface{}{"variant": "unzipped", "aid": "1234"})
	variant.Info("written")
	run.Info("done")
	root.Info("bare")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "INFO\twritten aid=1234 run=r-1 variant=unzipped", lines[0])
	assert.Equal(t, "INFO\tdone run=r-1", lines[1], "child fields must not leak into the parent")
	assert.Equal(t, "INFO\tbare", lines[2])
}

func TestLineLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLineLogger(LevelInfo, FormatJSON, &buf)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	l.WithFields(map[string]interface{}{
		"report": "annualReport.zip",
		"msg":    "shadowed",
		"bad":    make(chan int),
	}).Info("signed %d files", 2)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2026-03-01T12:00:00Z", got["ts"])
	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "signed 2 files", got["msg"])
	assert.Equal(t, "annualReport.zip", got["report"])
	assert.IsType(t, "", got["bad"], "unencodable values fall back to their text form")
}

func TestLineLogger_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("default", LevelInfo, FormatText, &buf)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.WithField("worker", i).Info("hashed")
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 16)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "INFO\thashed worker="), line)
	}
}

func TestEnsureLogger(t *testing.T) {
	var buf bytes.Buffer
	custom, err := New("default", LevelInfo, FormatText, &buf)
	require.NoError(t, err)
	assert.Same(t, custom, EnsureLogger(custom))

	out := captureStdout(t, func() {
		l := EnsureLogger(nil)
		l.Info("packaging %s", "annualReport")
		l.WithField("run", "r-2").Error("failed")
	})
	assert.Empty(t, out, "a missing logger must not print")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
