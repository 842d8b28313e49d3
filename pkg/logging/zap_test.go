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
	"strings"
	"testing"
)

func TestZapLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZapLogger(LevelInfo, FormatJSON, &buf)
	if err != nil {
		t.Fatalf("NewZapLogger() error = %v", err)
	}

	l.Debug("hidden %d", 1)
	l.WithField("report", "annualReport.zip").Info("signed %d files", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "signed 3 files" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["report"] != "annualReport.zip" {
		t.Errorf("report field = %v", entry["report"])
	}
}

func TestZapLogger_SilentAndDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZapLogger(LevelSilent, FormatText, &buf)
	if err != nil {
		t.Fatal(err)
	}
	l.Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("silent logger wrote %q", buf.String())
	}

	l, err = NewZapLogger(LevelDebug, FormatText, &buf)
	if err != nil {
		t.Fatal(err)
	}
	l.WithFields(map[string]interface{}{"variant": "simple"}).Debug("building %s", "report")
	if !strings.Contains(buf.String(), "building") || !strings.Contains(buf.String(), "simple") {
		t.Errorf("debug output = %q", buf.String())
	}
}
