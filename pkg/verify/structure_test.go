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

package verify

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

func entries(names ...string) []archive.Entry {
	out := make([]archive.Entry, 0, len(names))
	for _, n := range names {
		out = append(out, archive.Entry{Name: n, IsDir: n[len(n)-1] == '/'})
	}
	return out
}

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []archive.Entry
		opts    []ValidateOption
		wantErr string
	}{
		{
			name:    "simple package",
			entries: entries("META-INF/", "META-INF/reports.json", "annualReport.zip"),
		},
		{
			name:    "foldered package",
			entries: entries("a/", "a/META-INF/", "a/META-INF/reports.json", "a/reports/", "a/reports/doc.xhtml"),
		},
		{
			name:    "no META-INF",
			entries: entries("reports/", "reports/doc.xhtml"),
			wantErr: "META-INF directory not found in the package",
		},
		{
			name:    "no manifest",
			entries: entries("META-INF/", "reports/"),
			wantErr: "reports.json not found in META-INF directory",
		},
		{
			name:    "no manifest allowed",
			entries: entries("META-INF/", "reports/"),
			opts:    []ValidateOption{WithoutManifest()},
		},
		{
			name:    "no reports and no zip",
			entries: entries("META-INF/", "META-INF/reports.json", "readme.txt"),
			wantErr: "neither reports directory nor zip file found in the package",
		},
		{
			name:    "META-INF check comes first",
			entries: entries("readme.txt"),
			wantErr: "META-INF directory not found in the package",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries(tt.entries, tt.opts...)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateEntries() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateEntries() expected error %q", tt.wantErr)
			}
			var rerr *reporterr.Error
			if !asReportErr(err, &rerr) || rerr.Message != tt.wantErr {
				t.Errorf("ValidateEntries() error = %v, want message %q", err, tt.wantErr)
			}
			if !reporterr.IsKind(err, reporterr.KindStructural) {
				t.Errorf("ValidateEntries() kind = %v, want structural", reporterr.KindOf(err))
			}
		})
	}
}

func TestValidateArchive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"/stage/META-INF/reports.json": "{}",
		"/stage/annualReport.zip":      "zip",
	} {
		if err := afero.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := archive.Create(fsys, "/stage", "/pkg.zip"); err != nil {
		t.Fatal(err)
	}
	if err := ValidateArchive(fsys, "/pkg.zip"); err != nil {
		t.Errorf("ValidateArchive() error = %v", err)
	}

	err := ValidateArchive(fsys, "/missing.zip")
	if !reporterr.IsKind(err, reporterr.KindIO) {
		t.Errorf("ValidateArchive(missing) = %v, want IO error", err)
	}

	if err := afero.WriteFile(fsys, "/garbage.zip", []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateArchive(fsys, "/garbage.zip"); err == nil {
		t.Error("ValidateArchive(garbage) expected error")
	}
}
