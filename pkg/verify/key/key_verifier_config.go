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

package key

import (
	"context"
	"crypto"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/config"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/verify"
)

// KeyVerifierConfig holds configuration for creating a public key verifier.
//
//nolint:revive
type KeyVerifierConfig struct {
	// PublicKeys are the PEM public keys of the signers. A signature is
	// accepted when it verifies under any of them.
	PublicKeys []config.KeyConfig

	// Identity is the aid every manifest entry must carry. Empty accepts
	// any identity.
	Identity string

	Logger logging.Logger
}

// Verifier verifies report package signatures against a fixed set of
// public keys.
type Verifier struct {
	config     KeyVerifierConfig
	publicKeys []crypto.PublicKey
	keyHashes  []string
}

// NewVerifier loads every configured public key.
func NewVerifier(fsys afero.Fs, cfg KeyVerifierConfig) (*Verifier, error) {
	if len(cfg.PublicKeys) == 0 {
		return nil, reporterr.New(reporterr.KindConfiguration, "key.NewVerifier", "at least one public key is required", nil)
	}

	v := &Verifier{config: cfg}
	for _, kc := range cfg.PublicKeys {
		pub, err := kc.LoadPublicKey(fsys)
		if err != nil {
			return nil, reporterr.NewWithPath(reporterr.KindConfiguration, "key.NewVerifier", kc.Path,
				"failed to load public key", err)
		}
		hash, err := config.ComputePublicKeyHash(pub)
		if err != nil {
			return nil, reporterr.NewWithPath(reporterr.KindConfiguration, "key.NewVerifier", kc.Path,
				"failed to compute public key hash", err)
		}
		v.publicKeys = append(v.publicKeys, pub)
		v.keyHashes = append(v.keyHashes, hash)
	}
	return v, nil
}

// PublicKeys returns the loaded keys in configuration order.
func (v *Verifier) PublicKeys() []crypto.PublicKey {
	return v.publicKeys
}

// KeyHashes returns the hex SHA-256 of each key's PKIX encoding.
func (v *Verifier) KeyHashes() []string {
	return v.keyHashes
}

// VerifyPackage runs content verification of the package at path.
func (v *Verifier) VerifyPackage(ctx context.Context, fsys afero.Fs, path string) (*verify.ContentReport, error) {
	return verify.VerifyContent(ctx, fsys, path, verify.VerifyOptions{
		PublicKeys: v.publicKeys,
		Identity:   v.config.Identity,
		Logger:     v.config.Logger,
	})
}
