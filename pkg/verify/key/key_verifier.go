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

// Package key verifies signed report packages with PEM public keys.
package key

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/config"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/tracing"
	"github.com/sigstore/report-signing/pkg/utils"
	"github.com/sigstore/report-signing/pkg/verify"
)

var _ verify.PackageVerifier = (*KeyVerifier)(nil)

// KeyVerifierOptions contains options for high-level key-based verification.
type KeyVerifierOptions struct {
	PackagePath    string
	PublicKeyPaths []string
	Identity       string
	Logger         logging.Logger
}

// KeyVerifier provides high-level verification with validation.
type KeyVerifier struct {
	fs     afero.Fs
	opts   KeyVerifierOptions
	logger logging.Logger
}

// NewKeyVerifier creates a new high-level key verifier with validation.
func NewKeyVerifier(fsys afero.Fs, opts KeyVerifierOptions) (*KeyVerifier, error) {
	if err := utils.ValidateFileExists(fsys, "package", opts.PackagePath); err != nil {
		return nil, err
	}
	if len(opts.PublicKeyPaths) == 0 {
		return nil, utils.ValidateFileExists(fsys, "public key", "")
	}
	if err := utils.ValidateMultiple(fsys, "public key", opts.PublicKeyPaths, utils.PathTypeFile); err != nil {
		return nil, err
	}
	return &KeyVerifier{fs: fsys, opts: opts, logger: logging.EnsureLogger(opts.Logger)}, nil
}

// Verify loads the keys, checks the archive structure, then recomputes
// every digest and checks every signature and the signer identity.
func (kv *KeyVerifier) Verify(ctx context.Context) (verify.Result, error) {
	kv.logger.Info("Key-based verification")
	kv.logger.Info("  PACKAGE:     %s", filepath.Clean(kv.opts.PackagePath))
	kv.logger.Info("  --key:       %v", kv.opts.PublicKeyPaths)
	kv.logger.Info("  --identity:  %s", kv.opts.Identity)

	keys := make([]config.KeyConfig, 0, len(kv.opts.PublicKeyPaths))
	for _, p := range kv.opts.PublicKeyPaths {
		keys = append(keys, config.KeyConfig{Path: p})
	}
	verifier, err := NewVerifier(kv.fs, KeyVerifierConfig{
		PublicKeys: keys,
		Identity:   kv.opts.Identity,
		Logger:     kv.logger,
	})
	if err != nil {
		return verify.Result{Package: kv.opts.PackagePath, Message: err.Error()}, err
	}

	var report *verify.ContentReport
	attrs := map[string]interface{}{"package": kv.opts.PackagePath, "keys": len(keys)}
	err = tracing.Run(ctx, "verify.KeyVerifier", attrs, func(ctx context.Context) error {
		if err := verify.ValidateArchive(kv.fs, kv.opts.PackagePath); err != nil {
			return err
		}
		var err error
		report, err = verifier.VerifyPackage(ctx, kv.fs, kv.opts.PackagePath)
		return err
	})
	res := verify.Summarize(report, err)
	if res.Package == "" {
		res.Package = kv.opts.PackagePath
	}
	return res, err
}
