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

package key

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/config"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/packaging"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signing"
	signkey "github.com/sigstore/report-signing/pkg/signing/key"
)

const aid = "EAid"

// signedPackage writes a key pair and an unzipped signed package to fsys,
// returning the package and public key paths.
func signedPackage(t *testing.T, fsys afero.Fs) (string, string) {
	t.Helper()
	for name, content := range map[string]string{
		"/src/annualReport/META-INF/reportPackage.json": "{}",
		"/src/annualReport/reports/doc1.xhtml":          "<html/>",
	} {
		if err := afero.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := archive.Create(fsys, "/src", "/in/annualReport.zip"); err != nil {
		t.Fatal(err)
	}
	if err := archive.Extract(fsys, "/in/annualReport.zip", "/work"); err != nil {
		t.Fatal(err)
	}

	priv, err := signing.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	files, err := signing.WriteKeyPair(fsys, "/keys", "signer", priv, "")
	if err != nil {
		t.Fatal(err)
	}
	signer, err := signkey.NewKeySigner(fsys, signkey.KeySignerConfig{
		Identity: aid,
		Keys:     []config.KeyConfig{{Path: files.PrivateKey}},
	})
	if err != nil {
		t.Fatal(err)
	}

	p := packaging.NewPackager(fsys, manifest.BuildOptions{Signer: signer, Identity: aid})
	out, err := p.Package(context.Background(), packaging.Request{
		Variant:   packaging.Unzipped,
		Source:    "/in/annualReport.zip",
		Extracted: "/work",
		Dest:      "/out/unzipped_annualReport_signed.zip",
	})
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	return out, files.PublicKey
}

func TestNewKeyVerifier_MissingPackage(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/key.pub", []byte("dummy"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewKeyVerifier(fsys, KeyVerifierOptions{
		PackagePath:    "/nonexistent.zip",
		PublicKeyPaths: []string{"/key.pub"},
	})
	if err == nil {
		t.Error("Expected error for nonexistent package, got nil")
	}
}

func TestNewKeyVerifier_MissingPublicKey(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/pkg.zip", []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	for name, keys := range map[string][]string{
		"no keys":      nil,
		"missing file": {"/nonexistent.pub"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewKeyVerifier(fsys, KeyVerifierOptions{PackagePath: "/pkg.zip", PublicKeyPaths: keys})
			if err == nil {
				t.Error("Expected error for missing public key, got nil")
			}
		})
	}
}

func TestKeyVerifier_Verify(t *testing.T) {
	fsys := afero.NewMemMapFs()
	pkg, pub := signedPackage(t, fsys)

	kv, err := NewKeyVerifier(fsys, KeyVerifierOptions{
		PackagePath:    pkg,
		PublicKeyPaths: []string{pub},
		Identity:       aid,
	})
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}

	result, err := kv.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.Verified || result.Package != pkg || result.Files == 0 {
		t.Errorf("Verify() result = %+v, want verified with files", result)
	}
}

func TestKeyVerifier_VerifyWrongKey(t *testing.T) {
	fsys := afero.NewMemMapFs()
	pkg, _ := signedPackage(t, fsys)

	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	files, err := signing.WriteKeyPair(fsys, "/other", "other", other, "")
	if err != nil {
		t.Fatal(err)
	}

	kv, err := NewKeyVerifier(fsys, KeyVerifierOptions{PackagePath: pkg, PublicKeyPaths: []string{files.PublicKey}})
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}
	result, err := kv.Verify(context.Background())
	if err == nil || result.Verified {
		t.Fatalf("Verify() = %+v, %v; want failure", result, err)
	}
	if !reporterr.IsKind(err, reporterr.KindVerification) {
		t.Errorf("Verify() error kind = %v, want verification", reporterr.KindOf(err))
	}
}

func TestKeyVerifier_VerifyStructuralFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, pub := signedPackage(t, fsys)
	if err := afero.WriteFile(fsys, "/loose/readme.txt", []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := archive.Create(fsys, "/loose", "/loose.zip"); err != nil {
		t.Fatal(err)
	}

	kv, err := NewKeyVerifier(fsys, KeyVerifierOptions{PackagePath: "/loose.zip", PublicKeyPaths: []string{pub}})
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}
	if _, err := kv.Verify(context.Background()); !reporterr.IsKind(err, reporterr.KindStructural) {
		t.Errorf("Verify() error = %v, want structural", err)
	}
}

func TestNewVerifier_KeyHashes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, pub := signedPackage(t, fsys)

	v, err := NewVerifier(fsys, KeyVerifierConfig{PublicKeys: []config.KeyConfig{{Path: pub}}})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	want, err := config.ComputePublicKeyHashFromFile(fsys, pub)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.KeyHashes()) != 1 || v.KeyHashes()[0] != want {
		t.Errorf("KeyHashes() = %v, want [%s]", v.KeyHashes(), want)
	}

	if _, err := NewVerifier(fsys, KeyVerifierConfig{}); !reporterr.IsKind(err, reporterr.KindConfiguration) {
		t.Errorf("NewVerifier(no keys) error = %v, want configuration", err)
	}
}
