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

package fault

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/internal/scratch"
	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/tracing"
	"github.com/sigstore/report-signing/pkg/verify"
)

const injectOp = "fault.Inject"

// Options configures an Injector.
type Options struct {
	// UnknownIdentity overrides the aid written by WrongIdentity.
	UnknownIdentity string
	Logger          logging.Logger
}

// Injector writes fault fixtures.
type Injector struct {
	fs              afero.Fs
	unknownIdentity string
	logger          logging.Logger
}

// NewInjector returns an injector working on fsys.
func NewInjector(fsys afero.Fs, opts Options) *Injector {
	id := opts.UnknownIdentity
	if id == "" {
		id = UnknownIdentity
	}
	return &Injector{fs: fsys, unknownIdentity: id, logger: logging.EnsureLogger(opts.Logger)}
}

// Inject derives the fixture of kind k from the signed package pkg and
// writes it to destDir, returning the fixture path.
//
// The package is validated, extracted into a private scratch directory,
// its manifest located and transformed, and the whole scratch tree
// archived again. The fixture is validated before returning, without the
// manifest check for RemoveManifest.
func (in *Injector) Inject(ctx context.Context, pkg string, k Kind, destDir string) (string, error) {
	transform, err := TransformFor(k, in.unknownIdentity)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, FixtureName(k, pkg))

	attrs := map[string]interface{}{"kind": k.String(), "package": pkg}
	err = tracing.Run(ctx, injectOp, attrs, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := verify.ValidateArchive(in.fs, pkg); err != nil {
			return err
		}

		dir, err := scratch.New(in.fs, "fault")
		if err != nil {
			return reporterr.IO(injectOp, pkg, err)
		}
		defer func() {
			if err := dir.Remove(); err != nil {
				in.logger.Warn("Failed to clean up: %v", err)
			}
		}()

		if err := archive.Extract(in.fs, pkg, dir.Path()); err != nil {
			return reporterr.IO(injectOp, pkg, err)
		}
		manifestPath, err := LocateManifest(in.fs, dir.Path())
		if err != nil {
			return err
		}
		if err := in.apply(manifestPath, k, transform); err != nil {
			return err
		}

		if err := archive.Create(in.fs, dir.Path(), dest); err != nil {
			return reporterr.IO(injectOp, dest, err)
		}

		var opts []verify.ValidateOption
		if k == RemoveManifest {
			opts = append(opts, verify.WithoutManifest())
		}
		return verify.ValidateArchive(in.fs, dest, opts...)
	})
	if err != nil {
		return "", err
	}
	in.logger.Info("Created %s fixture %s", k, dest)
	return dest, nil
}

// InjectAll writes one fixture per kind in AllKinds order.
func (in *Injector) InjectAll(ctx context.Context, pkg, destDir string) ([]string, error) {
	out := make([]string, 0, len(AllKinds))
	for _, k := range AllKinds {
		p, err := in.Inject(ctx, pkg, k, destDir)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (in *Injector) apply(manifestPath string, k Kind, transform Transform) error {
	if _, err := in.fs.Stat(manifestPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return reporterr.NewWithPath(reporterr.KindFaultPrecondition, injectOp, manifestPath, "manifest file is missing", err)
		}
		return reporterr.IO(injectOp, manifestPath, err)
	}

	var current *manifest.Manifest
	if k != RemoveManifest {
		m, err := manifest.Read(in.fs, manifestPath)
		if err != nil {
			return reporterr.NewWithPath(reporterr.KindFaultPrecondition, injectOp, manifestPath, "manifest cannot be parsed", err)
		}
		current = m
	}

	next, err := transform(current)
	if err != nil {
		var rerr *reporterr.Error
		if errors.As(err, &rerr) && rerr.Path == "" {
			rerr.Path = manifestPath
		}
		return err
	}
	if next == nil {
		if err := in.fs.Remove(manifestPath); err != nil {
			return reporterr.IO(injectOp, manifestPath, err)
		}
		in.logger.Debug("Removed %s", manifestPath)
		return nil
	}

	data, err := manifest.Marshal(next)
	if err != nil {
		return reporterr.New(reporterr.KindUnknown, injectOp, "failed to encode manifest", err)
	}
	if _, err := manifest.WriteFile(in.fs, manifestPath, data); err != nil {
		return reporterr.IO(injectOp, manifestPath, err)
	}
	in.logger.Debug("Rewrote %s with %d signature(s)", manifestPath, len(next.Signatures()))
	return nil
}

// LocateManifest returns the path of META-INF/reports.json in an extracted
// package rooted at root. META-INF is looked up at the top level first,
// then inside the single top-level directory.
func LocateManifest(fsys afero.Fs, root string) (string, error) {
	dirs, err := subdirs(fsys, root)
	if err != nil {
		return "", err
	}
	if contains(dirs, manifest.MetaInfDir) {
		return manifest.PathIn(root), nil
	}
	if len(dirs) != 1 {
		return "", reporterr.NewWithPath(reporterr.KindLayout, "fault.LocateManifest", root,
			"expected META-INF or exactly one top-level directory", nil)
	}
	folder := filepath.Join(root, dirs[0])
	inner, err := subdirs(fsys, folder)
	if err != nil {
		return "", err
	}
	if !contains(inner, manifest.MetaInfDir) {
		return "", reporterr.NewWithPath(reporterr.KindLayout, "fault.LocateManifest", folder,
			"no META-INF directory found", nil)
	}
	return manifest.PathIn(folder), nil
}

func subdirs(fsys afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, reporterr.IO("fault.LocateManifest", dir, err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
