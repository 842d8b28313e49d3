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

// Package generate runs the whole fixture generation flow: every report
// archive is signed into each requested package variant, each package is
// checked structurally, and negative fixtures are derived from the signed
// packages on request.
package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/internal/scratch"
	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/attest"
	"github.com/sigstore/report-signing/pkg/fault"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/packaging"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signing"
	"github.com/sigstore/report-signing/pkg/tracing"
	"github.com/sigstore/report-signing/pkg/verify"
)

const runOp = "generate.Run"

// Options configures a Generator.
type Options struct {
	// Signer signs every manifest entry. Its identity is recorded as aid.
	Signer signing.Signer

	// HashAlgorithm names the digest engine. Defaults to sha256.
	HashAlgorithm string

	// IdentitySubdir places outputs below a directory named after the
	// signer identity.
	IdentitySubdir bool

	// UnknownIdentity is written by wrong-identity fixtures.
	UnknownIdentity string

	// Attestor, when set, writes an attestation next to every signed
	// package.
	Attestor *attest.Attestor

	Logger logging.Logger
}

// Request names the inputs and outputs of one run.
type Request struct {
	// Reports lists report archives, or directories whose .zip files are
	// all processed.
	Reports []string

	// Variants are produced in the given order. Fail runs last.
	Variants []packaging.Variant

	SignedDir string
	FailDir   string

	// Clean removes the signed and fail output directories, identity
	// subdirectory included, before anything is written. A directory that
	// holds one of the reports is never removed.
	Clean bool
}

// Generator runs report signing and fixture generation.
type Generator struct {
	fs       afero.Fs
	opts     Options
	packager *packaging.Packager
	injector *fault.Injector
	logger   logging.Logger
}

// New returns a generator.
func New(fsys afero.Fs, opts Options) (*Generator, error) {
	if opts.Signer == nil {
		return nil, reporterr.New(reporterr.KindConfiguration, "generate.New", "no signer configured", nil)
	}
	if opts.Signer.Identity() == "" {
		return nil, reporterr.New(reporterr.KindConfiguration, "generate.New", "signer has no identity", nil)
	}
	logger := logging.EnsureLogger(opts.Logger)

	return &Generator{
		fs:   fsys,
		opts: opts,
		packager: packaging.NewPackager(fsys, manifest.BuildOptions{
			Signer:        opts.Signer,
			Identity:      opts.Signer.Identity(),
			HashAlgorithm: opts.HashAlgorithm,
			Logger:        logger,
		}),
		injector: fault.NewInjector(fsys, fault.Options{
			UnknownIdentity: opts.UnknownIdentity,
			Logger:          logger,
		}),
		logger: logger,
	}, nil
}

// Run processes every report strictly in sequence. A cancelled context
// stops the run before the next unit of work starts.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.Variants) == 0 {
		return nil, reporterr.New(reporterr.KindConfiguration, runOp, "no variants requested", nil)
	}
	reports, err := ExpandReports(g.fs, req.Reports)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, reporterr.New(reporterr.KindLayout, runOp, "no report files found", nil)
	}

	result := &Result{
		RunID:    uuid.NewString(),
		Identity: g.opts.Signer.Identity(),
		Keys:     g.opts.Signer.KeyCount(),
	}
	logger := g.logger.WithField("run", result.RunID)
	signedDir := g.outputDir(req.SignedDir)
	failDir := g.outputDir(req.FailDir)
	if req.Clean {
		if err := g.clean(reports, signedDir, failDir); err != nil {
			return nil, err
		}
		logger.Info("Removed previous outputs in %s and %s", signedDir, failDir)
	}

	attrs := map[string]interface{}{"run": result.RunID, "reports": len(reports)}
	err = tracing.Run(ctx, runOp, attrs, func(ctx context.Context) error {
		for _, report := range reports {
			rr := ReportResult{Source: report}
			for _, v := range req.Variants {
				if v == packaging.Fail {
					continue
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				pr, err := g.signOne(ctx, report, v, signedDir)
				if err != nil {
					return err
				}
				logger.Info("Signed %s as %s: %s", filepath.Base(report), v, pr.Path)
				rr.Packages = append(rr.Packages, pr)
			}
			result.Reports = append(result.Reports, rr)
		}

		if !containsVariant(req.Variants, packaging.Fail) {
			return nil
		}
		for _, pkg := range result.SignedPackages() {
			for _, k := range fault.AllKinds {
				if err := ctx.Err(); err != nil {
					return err
				}
				out, err := g.injector.Inject(ctx, pkg, k, failDir)
				if err != nil {
					return err
				}
				result.Fixtures = append(result.Fixtures, FixtureResult{Kind: k.String(), Source: pkg, Path: out})
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.Info("Run complete: %d report(s), %d package(s), %d fixture(s)",
		len(result.Reports), len(result.SignedPackages()), len(result.Fixtures))
	return result, nil
}

// signOne produces one signed package in its own scratch directory.
func (g *Generator) signOne(ctx context.Context, report string, v packaging.Variant, signedDir string) (PackageResult, error) {
	dir, err := scratch.New(g.fs, string(v))
	if err != nil {
		return PackageResult{}, reporterr.IO(runOp, report, err)
	}
	defer func() {
		if err := dir.Remove(); err != nil {
			g.logger.Warn("Failed to clean up: %v", err)
		}
	}()

	req := packaging.Request{
		Variant: v,
		Source:  report,
		Dest:    filepath.Join(signedDir, packaging.SignedName(v, report)),
	}
	if req.Staging, err = dir.Sub("staging"); err != nil {
		return PackageResult{}, reporterr.IO(runOp, dir.Path(), err)
	}
	if v.NeedsExtraction() {
		if req.Extracted, err = dir.Sub("extracted"); err != nil {
			return PackageResult{}, reporterr.IO(runOp, dir.Path(), err)
		}
		if err := archive.Extract(g.fs, report, req.Extracted); err != nil {
			return PackageResult{}, reporterr.IO(runOp, report, err)
		}
	}

	out, err := g.packager.Package(ctx, req)
	if err != nil {
		return PackageResult{}, err
	}
	if err := verify.ValidateArchive(g.fs, out); err != nil {
		return PackageResult{}, err
	}

	pr := PackageResult{Variant: v.String(), Path: out}
	if g.opts.Attestor != nil {
		if pr.Attestation, err = g.opts.Attestor.Create(ctx, out); err != nil {
			return PackageResult{}, err
		}
	}
	return pr, nil
}

// clean removes stale outputs of an earlier run.
func (g *Generator) clean(reports []string, dirs ...string) error {
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return reporterr.IO(runOp, dir, err)
		}
		if dir == "" || abs == filepath.Dir(abs) {
			return reporterr.New(reporterr.KindConfiguration, runOp,
				fmt.Sprintf("refusing to clean output directory %q", dir), nil)
		}
		for _, report := range reports {
			if within(abs, report) {
				return reporterr.New(reporterr.KindConfiguration, runOp,
					fmt.Sprintf("output directory %q contains report %s", dir, report), nil)
			}
		}
		if err := g.fs.RemoveAll(dir); err != nil {
			return reporterr.IO(runOp, dir, err)
		}
	}
	return nil
}

func within(dir, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (g *Generator) outputDir(dir string) string {
	if g.opts.IdentitySubdir {
		return filepath.Join(dir, g.opts.Signer.Identity())
	}
	return dir
}

// ExpandReports resolves report paths: files are kept, directories
// contribute their .zip files in lexicographic order.
func ExpandReports(fsys afero.Fs, paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := fsys.Stat(p)
		if err != nil {
			return nil, reporterr.IO(runOp, p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		infos, err := afero.ReadDir(fsys, p)
		if err != nil {
			return nil, reporterr.IO(runOp, p, err)
		}
		var zips []string
		for _, fi := range infos {
			if fi.Mode().IsRegular() && strings.EqualFold(filepath.Ext(fi.Name()), ".zip") {
				zips = append(zips, filepath.Join(p, fi.Name()))
			}
		}
		sort.Strings(zips)
		out = append(out, zips...)
	}
	return out, nil
}

func containsVariant(vs []packaging.Variant, want packaging.Variant) bool {
	for _, v := range vs {
		if v == want {
			return true
		}
	}
	return false
}
