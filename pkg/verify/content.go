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
	"context"
	"crypto"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/hashing/digests"
	hashengines "github.com/sigstore/report-signing/pkg/hashing/engines"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"

	// Registers the built-in hash engines.
	_ "github.com/sigstore/report-signing/pkg/hashing/engines/memory"
)

const contentOp = "verify.VerifyContent"

// VerifyOptions configures content verification.
type VerifyOptions struct {
	// PublicKeys are the keys a signature may verify under.
	PublicKeys []crypto.PublicKey
	// Identity is the expected aid of every entry. Empty skips the check.
	Identity string
	Logger   logging.Logger
}

// Problem is one content verification failure.
type Problem struct {
	File   string
	Reason string
}

func (p Problem) String() string {
	if p.File == "" {
		return p.Reason
	}
	return p.File + ": " + p.Reason
}

// ContentReport is the outcome of VerifyContent.
type ContentReport struct {
	Package  string
	Manifest *manifest.Manifest
	Diff     *manifest.Diff
	Problems []Problem
}

// OK reports whether no problem was found.
func (r *ContentReport) OK() bool {
	return len(r.Problems) == 0
}

func (r *ContentReport) add(file, format string, args ...interface{}) {
	r.Problems = append(r.Problems, Problem{File: file, Reason: fmt.Sprintf(format, args...)})
}

// VerifyContent checks what the structural validation cannot: that every
// report file in the package is covered by a manifest entry, that recorded
// digests match the content, that every signature verifies under one of
// the given keys, and that entries carry the expected identity.
//
// Files of simple and external-manifest packages are read from inside
// the embedded archive. A report is returned whenever the package could be
// read; the error is a VerificationError when the report holds problems.
func VerifyContent(ctx context.Context, fsys afero.Fs, pkgPath string, opts VerifyOptions) (*ContentReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.EnsureLogger(opts.Logger)

	if len(opts.PublicKeys) == 0 {
		return nil, reporterr.New(reporterr.KindConfiguration, contentOp, "at least one public key is required", nil)
	}
	keys, err := newKeyring(opts.PublicKeys)
	if err != nil {
		return nil, reporterr.New(reporterr.KindConfiguration, contentOp, "unusable public key", err)
	}

	r, err := archive.Open(fsys, pkgPath)
	if err != nil {
		return nil, reporterr.IO(contentOp, pkgPath, err)
	}
	defer func() {
		_ = r.Close()
	}()

	report := &ContentReport{Package: pkgPath}
	entries := r.Entries()

	manifestName, ok := FindManifestEntry(entries)
	if !ok {
		report.add("", "%s not found", manifest.EntryName)
		return report, failed(pkgPath, report)
	}
	data, err := r.ReadFile(manifestName)
	if err != nil {
		return nil, reporterr.IO(contentOp, pkgPath, err)
	}
	expected, err := manifest.Unmarshal(data)
	if err != nil {
		report.add(manifestName, "malformed manifest: %v", err)
		return report, failed(pkgPath, report)
	}
	report.Manifest = expected
	root := strings.TrimSuffix(manifestName, manifest.EntryName)

	actual, err := collectActual(r, entries, root, expected)
	if err != nil {
		return nil, reporterr.IO(contentOp, pkgPath, err)
	}
	report.Diff = manifest.Compare(actual, expected)
	for _, f := range report.Diff.Extra {
		report.add(f, "not covered by a signature entry")
	}
	for _, f := range report.Diff.Missing {
		report.add(f, "listed in the manifest but not found in the package")
	}
	for _, m := range report.Diff.Mismatches {
		report.add(m.File, "digest mismatch: manifest has %s, content is %s", m.Recorded, m.Computed)
	}

	sigs := expected.Signatures()
	if len(sigs) == 0 {
		report.add("", "manifest has no signatures")
	}
	for _, sig := range sigs {
		checkEntry(report, keys, sig, opts.Identity)
	}

	logger.Debug("Verified %s: %d entries, %d problem(s)", pkgPath, len(sigs), len(report.Problems))
	if !report.OK() {
		return report, failed(pkgPath, report)
	}
	return report, nil
}

func checkEntry(report *ContentReport, keys *keyring, sig manifest.Signature, identity string) {
	if identity != "" && sig.AID != identity {
		report.add(sig.File, "signed by unexpected identity %q", sig.AID)
	}
	if len(sig.Sigs) == 0 {
		report.add(sig.File, "entry has no signatures")
		return
	}
	_, encoded, err := digests.SplitPrefixed(sig.Digest)
	if err != nil {
		report.add(sig.File, "malformed digest: %v", err)
		return
	}
	for i, s := range sig.Sigs {
		if !keys.verify(s, []byte(encoded)) {
			report.add(sig.File, "signature %d does not verify under any trusted key", i)
		}
	}
}

func failed(pkgPath string, report *ContentReport) error {
	msgs := make([]string, len(report.Problems))
	for i, p := range report.Problems {
		msgs[i] = p.String()
	}
	return reporterr.NewWithPath(reporterr.KindVerification, contentOp, pkgPath,
		fmt.Sprintf("%d problem(s): %s", len(msgs), strings.Join(msgs, "; ")), nil)
}

// FindManifestEntry returns the name of the shallowest
// META-INF/reports.json member of an archive.
func FindManifestEntry(entries []archive.Entry) (string, bool) {
	best := ""
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if e.Name != manifest.EntryName && !strings.HasSuffix(e.Name, "/"+manifest.EntryName) {
			continue
		}
		if best == "" || strings.Count(e.Name, "/") < strings.Count(best, "/") {
			best = e.Name
		}
	}
	return best, best != ""
}

// collectActual recomputes digests for the report files the package holds.
//
// A reports/ directory beside META-INF yields "reports/<file>" entries. A
// manifest with nested names and no such directory is resolved through an
// embedded archive. Otherwise every top-level file except META-INF is a
// report.
func collectActual(r *archive.Reader, entries []archive.Entry, root string, expected *manifest.Manifest) (*manifest.Manifest, error) {
	algorithm := hashengines.DefaultAlgorithm
	nested := false
	for _, sig := range expected.Signatures() {
		if alg, _, err := digests.SplitPrefixed(sig.Digest); err == nil {
			algorithm = alg
		}
		if strings.Contains(sig.File, "/") {
			nested = true
		}
	}
	if !hashengines.IsSupported(algorithm) {
		algorithm = hashengines.DefaultAlgorithm
	}

	var out []manifest.Signature
	add := func(name string, data []byte) error {
		d, err := hashengines.Sum(algorithm, data)
		if err != nil {
			return err
		}
		out = append(out, manifest.Signature{File: name, Digest: d.Prefixed()})
		return nil
	}

	reportsPrefix := root + "reports/"
	if hasPrefix(entries, reportsPrefix) {
		for _, e := range childFiles(entries, reportsPrefix) {
			data, err := r.ReadFile(e)
			if err != nil {
				return nil, err
			}
			if err := add("reports/"+path.Base(e), data); err != nil {
				return nil, err
			}
		}
		return manifest.New(out), nil
	}

	children := childFiles(entries, root)
	if nested {
		for _, e := range children {
			if !strings.HasSuffix(e, ".zip") {
				continue
			}
			data, err := r.ReadFile(e)
			if err != nil {
				return nil, err
			}
			inner, err := archive.OpenBytes(data)
			if err != nil {
				return nil, err
			}
			found := false
			for _, name := range innerReports(inner.Entries()) {
				content, err := inner.ReadFile(name)
				if err != nil {
					return nil, err
				}
				if err := add("reports/"+path.Base(name), content); err != nil {
					return nil, err
				}
				found = true
			}
			if found {
				return manifest.New(out), nil
			}
		}
		return manifest.New(out), nil
	}

	for _, e := range children {
		data, err := r.ReadFile(e)
		if err != nil {
			return nil, err
		}
		if err := add(strings.TrimPrefix(e, root), data); err != nil {
			return nil, err
		}
	}
	return manifest.New(out), nil
}

func hasPrefix(entries []archive.Entry, prefix string) bool {
	for _, e := range entries {
		if strings.HasPrefix(e.Name, prefix) {
			return true
		}
	}
	return false
}

// childFiles lists regular members directly below prefix, sorted.
func childFiles(entries []archive.Entry, prefix string) []string {
	var names []string
	for _, e := range entries {
		if e.IsDir || !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(e.Name, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// innerReports lists the files directly inside the first reports/
// directory of an embedded archive.
func innerReports(entries []archive.Entry) []string {
	prefix := ""
	best := -1
	for _, e := range entries {
		idx := strings.Index("/"+e.Name, "/reports/")
		if idx < 0 {
			continue
		}
		p := e.Name[:idx] + "reports/"
		if depth := strings.Count(p, "/"); best < 0 || depth < best || (depth == best && p < prefix) {
			prefix, best = p, depth
		}
	}
	if best < 0 {
		return nil
	}
	return childFiles(entries, prefix)
}
