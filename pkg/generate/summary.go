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

package generate

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Result records what a run produced.
type Result struct {
	RunID    string          `yaml:"run"`
	Identity string          `yaml:"identity"`
	Keys     int             `yaml:"keys"`
	Reports  []ReportResult  `yaml:"reports"`
	Fixtures []FixtureResult `yaml:"fixtures,omitempty"`
}

// ReportResult lists the signed packages built from one report archive.
type ReportResult struct {
	Source   string          `yaml:"source"`
	Packages []PackageResult `yaml:"packages"`
}

// PackageResult is one signed package.
type PackageResult struct {
	Variant     string `yaml:"variant"`
	Path        string `yaml:"path"`
	Attestation string `yaml:"attestation,omitempty"`
}

// FixtureResult is one fault fixture and the package it came from.
type FixtureResult struct {
	Kind   string `yaml:"kind"`
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

// SignedPackages returns every signed package path in production order.
func (r *Result) SignedPackages() []string {
	var out []string
	for _, rr := range r.Reports {
		for _, p := range rr.Packages {
			out = append(out, p.Path)
		}
	}
	return out
}

// WriteSummary stores r as YAML at path.
func WriteSummary(fsys afero.Fs, path string, r *Result) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("write summary %q: %w", path, err)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(fsys afero.Fs, path string) (*Result, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read summary %q: %w", path, err)
	}
	r := &Result{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode summary %q: %w", path, err)
	}
	return r, nil
}
