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

package packaging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/tracing"
)

const packageOp = "packaging.Package"

// Request describes one signed package to produce.
type Request struct {
	// Variant selects the package shape. Fail is not a packaging variant.
	Variant Variant
	// Source is the original report archive.
	Source string
	// Staging is an empty private directory used by Simple and
	// ExternalManifest.
	Staging string
	// Extracted holds the extracted contents of Source. Required by
	// ExternalManifest, Unzipped and Unfoldered.
	Extracted string
	// Dest is the output archive path. Its parent is created on demand and
	// an existing file is replaced.
	Dest string
	// Manifest is a manifest already built over the reports directory of
	// Extracted. When nil it is built on demand.
	Manifest *manifest.Manifest
}

// Packager produces signed packages.
type Packager struct {
	fs     afero.Fs
	build  manifest.BuildOptions
	logger logging.Logger
}

// NewPackager returns a packager that signs with the given build options.
// PathMode in opts is ignored; each variant picks its own.
func NewPackager(fsys afero.Fs, opts manifest.BuildOptions) *Packager {
	return &Packager{fs: fsys, build: opts, logger: logging.EnsureLogger(opts.Logger)}
}

// BuildNestedManifest builds the manifest for the reports directory found
// in extracted, with entries named "<parent>/<file>".
func (p *Packager) BuildNestedManifest(extracted string) (*manifest.Manifest, error) {
	reportsDir, err := FindReportsDir(p.fs, extracted)
	if err != nil {
		return nil, err
	}
	opts := p.build
	opts.PathMode = manifest.PathNested
	return manifest.Build(p.fs, reportsDir, opts)
}

// Package lays out and archives one signed package, returning its path.
func (p *Packager) Package(ctx context.Context, req Request) (string, error) {
	attrs := map[string]interface{}{"variant": req.Variant.String(), "dest": req.Dest}
	err := tracing.Run(ctx, "packaging.Package", attrs, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch req.Variant {
		case Simple:
			return p.packageSimple(req)
		case ExternalManifest:
			return p.packageExternal(req)
		case Unzipped:
			return p.packageUnzipped(req, false)
		case Unfoldered:
			return p.packageUnzipped(req, true)
		default:
			return reporterr.New(reporterr.KindConfiguration, packageOp,
				fmt.Sprintf("variant %q does not produce a signed package", req.Variant), nil)
		}
	})
	if err != nil {
		return "", err
	}
	p.logger.Info("Created %s package %s", req.Variant, req.Dest)
	return req.Dest, nil
}

func (p *Packager) packageSimple(req Request) error {
	if err := p.requireDir(req.Staging, "staging"); err != nil {
		return err
	}
	if err := copyFile(p.fs, req.Source, filepath.Join(req.Staging, filepath.Base(req.Source))); err != nil {
		return err
	}

	opts := p.build
	opts.PathMode = manifest.PathFlat
	m, err := manifest.Build(p.fs, req.Staging, opts)
	if err != nil {
		return err
	}
	if err := p.writeManifest(req.Staging, m); err != nil {
		return err
	}
	return p.archive(req.Staging, req.Dest)
}

func (p *Packager) packageExternal(req Request) error {
	if err := p.requireDir(req.Staging, "staging"); err != nil {
		return err
	}
	m, err := p.nestedManifest(req)
	if err != nil {
		return err
	}
	if err := copyFile(p.fs, req.Source, filepath.Join(req.Staging, filepath.Base(req.Source))); err != nil {
		return err
	}
	if err := p.writeManifest(req.Staging, m); err != nil {
		return err
	}
	return p.archive(req.Staging, req.Dest)
}

func (p *Packager) packageUnzipped(req Request, unfolder bool) error {
	m, err := p.nestedManifest(req)
	if err != nil {
		return err
	}
	reportsDir, err := FindReportsDir(p.fs, req.Extracted)
	if err != nil {
		return err
	}
	reportRoot := filepath.Dir(reportsDir)
	if err := p.writeManifest(reportRoot, m); err != nil {
		return err
	}
	if unfolder {
		return p.archiveUnfoldered(req.Extracted, req.Dest)
	}
	return p.archive(req.Extracted, req.Dest)
}

func (p *Packager) nestedManifest(req Request) (*manifest.Manifest, error) {
	if err := p.requireDir(req.Extracted, "extracted"); err != nil {
		return nil, err
	}
	if req.Manifest != nil {
		return req.Manifest, nil
	}
	return p.BuildNestedManifest(req.Extracted)
}

func (p *Packager) writeManifest(root string, m *manifest.Manifest) error {
	path, err := manifest.Write(p.fs, root, m)
	if err != nil {
		return reporterr.IO(packageOp, manifest.PathIn(root), err)
	}
	p.logger.Debug("Wrote manifest with %d signature(s) to %s", len(m.Signatures()), path)
	return nil
}

// archive writes the tree below root to dest.
func (p *Packager) archive(root, dest string) error {
	b := archive.NewBuilder(p.fs)
	if err := b.AddFolder(root, ""); err != nil {
		return reporterr.IO(packageOp, root, err)
	}
	return p.write(b, dest)
}

// archiveUnfoldered drops one folder level: the contents of every top-level
// directory of root land at the archive root. Files directly in root are not
// carried, and on a name clash the directory sorting last wins.
func (p *Packager) archiveUnfoldered(root, dest string) error {
	infos, err := afero.ReadDir(p.fs, root)
	if err != nil {
		return reporterr.IO(packageOp, root, err)
	}
	b := archive.NewBuilder(p.fs)
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		dir := filepath.Join(root, info.Name())
		if err := b.AddFolder(dir, ""); err != nil {
			return reporterr.IO(packageOp, dir, err)
		}
	}
	return p.write(b, dest)
}

func (p *Packager) write(b *archive.Builder, dest string) error {
	if err := b.Write(dest); err != nil {
		return reporterr.IO(packageOp, dest, err)
	}
	p.logger.Debug("Archive %s contains %v", dest, b.Names())
	return nil
}

func (p *Packager) requireDir(dir, what string) error {
	if dir == "" {
		return reporterr.New(reporterr.KindConfiguration, packageOp, what+" directory is required", nil)
	}
	info, err := p.fs.Stat(dir)
	if err != nil {
		return reporterr.IO(packageOp, dir, err)
	}
	if !info.IsDir() {
		return reporterr.NewWithPath(reporterr.KindConfiguration, packageOp, dir, what+" path is not a directory", nil)
	}
	return nil
}

func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return reporterr.IO(packageOp, src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return reporterr.IO(packageOp, filepath.Dir(dst), err)
	}
	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return reporterr.IO(packageOp, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return reporterr.IO(packageOp, dst, err)
	}
	if err := out.Close(); err != nil {
		return reporterr.IO(packageOp, dst, err)
	}
	return nil
}
