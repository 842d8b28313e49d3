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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Marshal encodes m as UTF-8 JSON indented by two spaces, without a
// trailing newline. Empty signature lists are written as [].
func Marshal(m *Manifest) ([]byte, error) {
	if m == nil {
		return nil, errors.New("manifest is nil")
	}
	out := m.Clone()
	if out.DocumentInfo.Signatures == nil {
		out.DocumentInfo.Signatures = []Signature{}
	}
	for i := range out.DocumentInfo.Signatures {
		if out.DocumentInfo.Signatures[i].Sigs == nil {
			out.DocumentInfo.Signatures[i].Sigs = []string{}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal decodes a manifest and checks that it carries a documentInfo
// header.
func Unmarshal(data []byte) (*Manifest, error) {
	var raw struct {
		DocumentInfo *DocumentInfo `json:"documentInfo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if raw.DocumentInfo == nil {
		return nil, errors.New("manifest has no documentInfo")
	}
	return &Manifest{DocumentInfo: *raw.DocumentInfo}, nil
}

// PathIn returns the manifest location below root.
func PathIn(root string) string {
	return filepath.Join(root, MetaInfDir, FileName)
}

// Read loads the manifest file at path.
func Read(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", path, err)
	}
	m, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Write stores m as META-INF/reports.json below root, creating META-INF
// when absent and replacing an existing manifest. It returns the path
// written.
func Write(fsys afero.Fs, root string, m *Manifest) (string, error) {
	data, err := Marshal(m)
	if err != nil {
		return "", err
	}
	return WriteFile(fsys, PathIn(root), data)
}

// WriteFile stores already encoded manifest bytes at path.
func WriteFile(fsys afero.Fs, path string, data []byte) (string, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest %q: %w", path, err)
	}
	return path, nil
}
