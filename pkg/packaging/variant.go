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

// Package packaging lays signed report packages out on disk and archives
// them in one of the supported shapes.
package packaging

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Variant selects the shape of a signed report package.
type Variant string

const (
	// Simple archives the original report file next to a flat manifest.
	Simple Variant = "simple"
	// ExternalManifest archives the unmodified original next to a manifest
	// built over its extracted contents.
	ExternalManifest Variant = "external-manifest"
	// Unzipped archives the extracted tree with the manifest placed
	// beside the reports directory.
	Unzipped Variant = "unzipped"
	// Unfoldered is Unzipped with the top folder level removed.
	Unfoldered Variant = "unfoldered"
	// Fail requests negative fixtures derived from the signed packages.
	Fail Variant = "fail"
)

// AllVariants lists every variant in canonical order.
var AllVariants = []Variant{Simple, ExternalManifest, Unzipped, Unfoldered, Fail}

// ParseVariant parses a variant name. The underscore spelling
// "external_manifest" is accepted as well.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return Simple, nil
	case "external-manifest", "external_manifest":
		return ExternalManifest, nil
	case "unzipped":
		return Unzipped, nil
	case "unfoldered":
		return Unfoldered, nil
	case "fail":
		return Fail, nil
	default:
		return "", fmt.Errorf("unknown package variant %q", s)
	}
}

// ParseVariants parses a list of variant names, dropping duplicates while
// keeping the first occurrence order.
func ParseVariants(names []string) ([]Variant, error) {
	seen := make(map[Variant]bool, len(names))
	out := make([]Variant, 0, len(names))
	for _, name := range names {
		v, err := ParseVariant(name)
		if err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

// String returns the variant name.
func (v Variant) String() string {
	return string(v)
}

// NeedsExtraction reports whether the variant works on the extracted
// contents of the original archive.
func (v Variant) NeedsExtraction() bool {
	return v == ExternalManifest || v == Unzipped || v == Unfoldered
}

// SignedName returns the file name of the signed package produced from
// source for variant v.
func SignedName(v Variant, source string) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(filepath.Base(source), ext)
	signed := base + "_signed" + ext

	switch v {
	case ExternalManifest:
		return "external_manifest_" + signed
	case Unzipped:
		return "unzipped_" + signed
	case Unfoldered:
		return "unfoldered_unzipped_" + signed
	default:
		return signed
	}
}
