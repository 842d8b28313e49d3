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

package manifest

import (
	"testing"
)

func TestSignature_Complete(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want bool
	}{
		{name: "complete", sig: Signature{File: "a", Digest: "sha256-00", AID: "E1", Sigs: []string{"s"}}, want: true},
		{name: "digest only", sig: Signature{File: "a", Digest: "sha256-00"}, want: false},
		{name: "empty sigs", sig: Signature{File: "a", Digest: "sha256-00", AID: "E1", Sigs: []string{}}, want: false},
		{name: "no aid", sig: Signature{File: "a", Digest: "sha256-00", Sigs: []string{"s"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManifest_CloneIsDeep(t *testing.T) {
	m := New([]Signature{{File: "a.xml", Digest: "sha256-00", AID: "E1", Sigs: []string{"s1"}}})
	m.DocumentInfo.Extends = []string{"base"}

	c := m.Clone()
	c.DocumentInfo.Signatures[0].AID = "changed"
	c.DocumentInfo.Signatures[0].Sigs[0] = "changed"
	c.DocumentInfo.Extends[0] = "changed"

	if m.DocumentInfo.Signatures[0].AID != "E1" {
		t.Error("Clone() shares signature entries")
	}
	if m.DocumentInfo.Signatures[0].Sigs[0] != "s1" {
		t.Error("Clone() shares sigs slices")
	}
	if m.DocumentInfo.Extends[0] != "base" {
		t.Error("Clone() shares extends slice")
	}
	if (*Manifest)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestManifest_FilesAndFind(t *testing.T) {
	m := New([]Signature{
		{File: "reports/doc1.xml", Digest: "sha256-01"},
		{File: "reports/doc2.xml", Digest: "sha256-02"},
	})

	files := m.Files()
	if len(files) != 2 || files[0] != "reports/doc1.xml" || files[1] != "reports/doc2.xml" {
		t.Errorf("Files() = %v", files)
	}
	sig, ok := m.Find("reports/doc2.xml")
	if !ok || sig.Digest != "sha256-02" {
		t.Errorf("Find() = %+v, %v", sig, ok)
	}
	if _, ok := m.Find("missing"); ok {
		t.Error("Find() found a missing file")
	}
	if m.DocumentInfo.DocumentType != DocumentType {
		t.Errorf("DocumentType = %q", m.DocumentInfo.DocumentType)
	}
}

func TestPathMode(t *testing.T) {
	if got := PathFlat.RelativePath("reports", "doc1.xml"); got != "doc1.xml" {
		t.Errorf("flat RelativePath() = %q", got)
	}
	if got := PathNested.RelativePath("reports", "doc1.xml"); got != "reports/doc1.xml" {
		t.Errorf("nested RelativePath() = %q", got)
	}
	for _, mode := range []PathMode{PathFlat, PathNested} {
		parsed, err := ParsePathMode(mode.String())
		if err != nil || parsed != mode {
			t.Errorf("ParsePathMode(%q) = %v, %v", mode.String(), parsed, err)
		}
	}
	if _, err := ParsePathMode("deep"); err == nil {
		t.Error("ParsePathMode() expected error")
	}
}
