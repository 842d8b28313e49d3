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
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/reporterr"
)

type stubSigner struct {
	keys     int
	err      error
	messages []string
}

func (s *stubSigner) Sign(message []byte) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.messages = append(s.messages, string(message))
	out := make([]string, s.keys)
	for i := range out {
		out[i] = "sig" + string(rune('0'+i)) + ":" + string(message)
	}
	return out, nil
}

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestBuild_Flat(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/stage/annualReport.zip", []byte("zip-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	signer := &stubSigner{keys: 1}

	m, err := Build(fsys, "/stage", BuildOptions{PathMode: PathFlat, Signer: signer, Identity: "EAid"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	sigs := m.Signatures()
	if len(sigs) != 1 {
		t.Fatalf("len(signatures) = %d, want 1", len(sigs))
	}
	want := sha256Hex("zip-bytes")
	if sigs[0].File != "annualReport.zip" {
		t.Errorf("File = %q", sigs[0].File)
	}
	if sigs[0].Digest != "sha256-"+want {
		t.Errorf("Digest = %q", sigs[0].Digest)
	}
	if sigs[0].AID != "EAid" || !sigs[0].Complete() {
		t.Errorf("entry not complete: %+v", sigs[0])
	}
	if len(signer.messages) != 1 || signer.messages[0] != want {
		t.Errorf("signed messages = %v, want only the encoded digest %q", signer.messages, want)
	}
}

func TestBuild_NestedOrderAndKeyCount(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"doc2.xml", "doc1.xml", "doc10.xml"} {
		if err := afero.WriteFile(fsys, "/x/annualReport/reports/"+name, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := fsys.MkdirAll("/x/annualReport/reports/images", 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := Build(fsys, "/x/annualReport/reports", BuildOptions{
		PathMode: PathNested,
		Signer:   &stubSigner{keys: 3},
		Identity: "EAid",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := m.Files()
	want := []string{"reports/doc1.xml", "reports/doc10.xml", "reports/doc2.xml"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Files() = %v, want %v", got, want)
	}
	for _, sig := range m.Signatures() {
		if len(sig.Sigs) != 3 {
			t.Errorf("%s has %d sigs, want 3", sig.File, len(sig.Sigs))
		}
	}
}

func TestBuild_HashAlgorithm(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "/r/a.xml", []byte("a"), 0o644)

	m, err := Build(fsys, "/r", BuildOptions{Signer: &stubSigner{keys: 1}, Identity: "E", HashAlgorithm: "blake3"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if d := m.Signatures()[0].Digest; !strings.HasPrefix(d, "blake3-") || len(d) != len("blake3-")+64 {
		t.Errorf("Digest = %q", d)
	}

	_, err = Build(fsys, "/r", BuildOptions{Signer: &stubSigner{keys: 1}, Identity: "E", HashAlgorithm: "md5"})
	if !reporterr.IsKind(err, reporterr.KindConfiguration) {
		t.Errorf("Build() error = %v, want configuration error", err)
	}
}

func TestBuild_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = fsys.MkdirAll("/empty/sub", 0o755)
	_ = afero.WriteFile(fsys, "/full/a.xml", []byte("a"), 0o644)

	tests := []struct {
		name string
		dir  string
		opts BuildOptions
		kind reporterr.Kind
	}{
		{
			name: "missing directory",
			dir:  "/nope",
			opts: BuildOptions{Signer: &stubSigner{keys: 1}, Identity: "E"},
			kind: reporterr.KindIO,
		},
		{
			name: "no report files",
			dir:  "/empty",
			opts: BuildOptions{Signer: &stubSigner{keys: 1}, Identity: "E"},
			kind: reporterr.KindLayout,
		},
		{
			name: "zero signatures",
			dir:  "/full",
			opts: BuildOptions{Signer: &stubSigner{keys: 0}, Identity: "E"},
			kind: reporterr.KindSigning,
		},
		{
			name: "signer failure",
			dir:  "/full",
			opts: BuildOptions{Signer: &stubSigner{err: errors.New("hsm offline")}, Identity: "E"},
			kind: reporterr.KindSigning,
		},
		{
			name: "no signer",
			dir:  "/full",
			opts: BuildOptions{Identity: "E"},
			kind: reporterr.KindConfiguration,
		},
		{
			name: "no identity",
			dir:  "/full",
			opts: BuildOptions{Signer: &stubSigner{keys: 1}},
			kind: reporterr.KindConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(fsys, tt.dir, tt.opts)
			if err == nil {
				t.Fatal("Build() expected error")
			}
			if !reporterr.IsKind(err, tt.kind) {
				t.Errorf("Build() error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}
