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

// Package manifest provides the report package manifest model: the
// META-INF/reports.json document that pairs every report file with its
// digest, the signer identity and one signature per signing key.
package manifest

const (
	// DocumentType identifies the report package schema.
	DocumentType = "http://xbrl.org/PWD/2020-12-09/report-package"

	// MetaInfDir is the directory holding the manifest.
	MetaInfDir = "META-INF"

	// FileName is the manifest file name inside MetaInfDir.
	FileName = "reports.json"

	// EntryName is the slash-separated archive path of the manifest.
	EntryName = MetaInfDir + "/" + FileName
)

// Signature is the cryptographic evidence recorded for one report file.
type Signature struct {
	// File is the path of the report file relative to the package.
	File string `json:"file"`

	// Digest is "<algorithm>-<hex>".
	Digest string `json:"digest"`

	// AID is the signer identity label.
	AID string `json:"aid"`

	// Sigs holds one signature per signing key, in key order.
	Sigs []string `json:"sigs"`
}

// Complete reports whether every field of the signature is set.
func (s Signature) Complete() bool {
	return s.File != "" && s.Digest != "" && s.AID != "" && len(s.Sigs) > 0
}

// DocumentInfo is the manifest header.
type DocumentInfo struct {
	DocumentType string      `json:"documentType"`
	Extends      []string    `json:"extends,omitempty"`
	Signatures   []Signature `json:"signatures"`
}

// Manifest is the root object persisted as META-INF/reports.json.
type Manifest struct {
	DocumentInfo DocumentInfo `json:"documentInfo"`
}

// New returns a manifest of the report package document type holding
// signatures in the given order.
func New(signatures []Signature) *Manifest {
	return &Manifest{
		DocumentInfo: DocumentInfo{
			DocumentType: DocumentType,
			Signatures:   signatures,
		},
	}
}

// Signatures returns the signature entries in manifest order.
func (m *Manifest) Signatures() []Signature {
	return m.DocumentInfo.Signatures
}

// Files returns the file paths recorded in the manifest, in manifest
// order.
func (m *Manifest) Files() []string {
	files := make([]string, 0, len(m.DocumentInfo.Signatures))
	for _, sig := range m.DocumentInfo.Signatures {
		files = append(files, sig.File)
	}
	return files
}

// Find returns the signature entry recorded for file.
func (m *Manifest) Find(file string) (Signature, bool) {
	for _, sig := range m.DocumentInfo.Signatures {
		if sig.File == file {
			return sig, true
		}
	}
	return Signature{}, false
}

// Clone returns a deep copy that shares no slices with m.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	out := &Manifest{
		DocumentInfo: DocumentInfo{
			DocumentType: m.DocumentInfo.DocumentType,
		},
	}
	if m.DocumentInfo.Extends != nil {
		out.DocumentInfo.Extends = append([]string{}, m.DocumentInfo.Extends...)
	}
	if m.DocumentInfo.Signatures != nil {
		out.DocumentInfo.Signatures = make([]Signature, len(m.DocumentInfo.Signatures))
		for i, sig := range m.DocumentInfo.Signatures {
			sig.Sigs = append([]string{}, sig.Sigs...)
			out.DocumentInfo.Signatures[i] = sig
		}
	}
	return out
}
