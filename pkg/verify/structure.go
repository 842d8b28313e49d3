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
	"strings"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

const validateOp = "verify.ValidateArchive"

// ValidateOption adjusts the structural checks.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	requireManifest bool
}

// WithoutManifest skips the META-INF/reports.json check, for packages
// whose manifest was removed on purpose.
func WithoutManifest() ValidateOption {
	return func(o *validateOptions) {
		o.requireManifest = false
	}
}

// ValidateArchive checks the shape of the package at path. See
// ValidateEntries for the rules.
func ValidateArchive(fsys afero.Fs, path string, opts ...ValidateOption) error {
	entries, err := archive.Entries(fsys, path)
	if err != nil {
		return reporterr.IO(validateOp, path, err)
	}
	if err := ValidateEntries(entries, opts...); err != nil {
		return reporterr.NewWithPath(reporterr.KindStructural, validateOp, path, "invalid package structure", err)
	}
	return nil
}

// ValidateEntries checks, in order, that the entry list contains a
// META-INF/ directory, a META-INF/reports.json file, and either a reports/
// directory or a .zip member. The first failing check is reported.
func ValidateEntries(entries []archive.Entry, opts ...ValidateOption) error {
	o := validateOptions{requireManifest: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !hasEntry(entries, func(e archive.Entry) bool {
		return strings.HasSuffix(e.Name, manifest.MetaInfDir+"/")
	}) {
		return reporterr.New(reporterr.KindStructural, validateOp, "META-INF directory not found in the package", nil)
	}

	if o.requireManifest && !hasEntry(entries, func(e archive.Entry) bool {
		return strings.HasSuffix(e.Name, manifest.EntryName)
	}) {
		return reporterr.New(reporterr.KindStructural, validateOp, "reports.json not found in META-INF directory", nil)
	}

	if !hasEntry(entries, func(e archive.Entry) bool {
		return (e.IsDir && strings.HasSuffix(e.Name, "reports/")) || strings.HasSuffix(e.Name, ".zip")
	}) {
		return reporterr.New(reporterr.KindStructural, validateOp, "neither reports directory nor zip file found in the package", nil)
	}

	return nil
}

func hasEntry(entries []archive.Entry, match func(archive.Entry) bool) bool {
	for _, e := range entries {
		if match(e) {
			return true
		}
	}
	return false
}
