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
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/hashing/digests"
	hashengines "github.com/sigstore/report-signing/pkg/hashing/engines"
	hashio "github.com/sigstore/report-signing/pkg/hashing/engines/io"

	// Registers the built-in hash engines.
	_ "github.com/sigstore/report-signing/pkg/hashing/engines/memory"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

const buildOp = "manifest.build"

// Build digests and signs every report file directly inside reportDir and
// assembles the manifest.
//
// Entries are processed in lexicographic order of their names. Only
// regular files (or symlinks to them) are recorded; subdirectories are
// skipped. The signer signs the encoded part of each digest, without the
// algorithm tag.
func Build(fsys afero.Fs, reportDir string, opts BuildOptions) (*Manifest, error) {
	logger := logging.EnsureLogger(opts.Logger)

	if opts.Signer == nil {
		return nil, reporterr.New(reporterr.KindConfiguration, buildOp, "no signer configured", nil)
	}
	if opts.Identity == "" {
		return nil, reporterr.New(reporterr.KindConfiguration, buildOp, "no signer identity configured", nil)
	}
	algorithm := opts.HashAlgorithm
	if algorithm == "" {
		algorithm = hashengines.DefaultAlgorithm
	}
	if !hashengines.IsSupported(algorithm) {
		return nil, reporterr.New(reporterr.KindConfiguration, buildOp,
			"unsupported hash algorithm "+algorithm, nil)
	}

	infos, err := afero.ReadDir(fsys, reportDir)
	if err != nil {
		return nil, reporterr.IO(buildOp, reportDir, err)
	}

	parent := filepath.Base(filepath.Clean(reportDir))
	newHasher := hashio.NewFactory(algorithm, opts.ChunkSize)
	signatures := make([]Signature, 0, len(infos))

	for _, info := range infos {
		filePath := filepath.Join(reportDir, info.Name())

		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = fsys.Stat(filePath); err != nil {
				return nil, reporterr.IO(buildOp, filePath, err)
			}
		}
		if !info.Mode().IsRegular() {
			logger.Debug("Skipping %s: not a regular file", filePath)
			continue
		}

		entry, err := signFile(fsys, filePath, newHasher, opts)
		if err != nil {
			return nil, err
		}
		entry.File = opts.PathMode.RelativePath(parent, info.Name())
		logger.Debug("Signed %s (%s) with %d key(s)", entry.File, entry.Digest, len(entry.Sigs))
		signatures = append(signatures, entry)
	}

	if len(signatures) == 0 {
		return nil, reporterr.NewWithPath(reporterr.KindLayout, buildOp, reportDir,
			"no report files found", nil)
	}
	return New(signatures), nil
}

func signFile(fsys afero.Fs, filePath string, newHasher hashio.Factory, opts BuildOptions) (Signature, error) {
	hasher, err := newHasher(fsys, filePath)
	if err != nil {
		return Signature{}, reporterr.NewWithPath(reporterr.KindConfiguration, buildOp, filePath,
			"cannot create file hasher", err)
	}
	digest, err := hasher.Compute()
	if err != nil {
		return Signature{}, reporterr.IO(buildOp, filePath, err)
	}

	entry := Signature{Digest: digest.Prefixed()}
	_, encoded, err := digests.SplitPrefixed(entry.Digest)
	if err != nil {
		return Signature{}, reporterr.NewWithPath(reporterr.KindSigning, buildOp, filePath,
			"malformed digest", err)
	}

	sigs, err := opts.Signer.Sign([]byte(encoded))
	if err != nil {
		return Signature{}, reporterr.NewWithPath(reporterr.KindSigning, buildOp, filePath,
			"signing failed", err)
	}
	if len(sigs) == 0 {
		return Signature{}, reporterr.NewWithPath(reporterr.KindSigning, buildOp, filePath,
			"signer returned no signatures", nil)
	}

	entry.AID = opts.Identity
	entry.Sigs = sigs
	return entry, nil
}
