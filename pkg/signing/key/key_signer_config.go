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
	"fmt"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/config"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

// KeySignerConfig holds configuration for creating a local key signer.
//
//nolint:revive
type KeySignerConfig struct {
	// Keys lists the private keys to sign with, in signature order.
	Keys []config.KeyConfig

	// Identity is recorded as the aid of every signature entry.
	Identity string
}

// NewKeySigner loads every configured key from fsys.
func NewKeySigner(fsys afero.Fs, cfg KeySignerConfig) (*KeySigner, error) {
	const op = "key.NewKeySigner"

	if cfg.Identity == "" {
		return nil, reporterr.New(reporterr.KindConfiguration, op, "signer identity is required", nil)
	}
	if len(cfg.Keys) == 0 {
		return nil, reporterr.New(reporterr.KindConfiguration, op, "at least one signing key is required", nil)
	}

	keypairs := make([]*ReportKeypair, 0, len(cfg.Keys))
	for i := range cfg.Keys {
		kc := cfg.Keys[i]
		priv, err := kc.LoadPrivateKey(fsys)
		if err != nil {
			return nil, reporterr.NewWithPath(reporterr.KindConfiguration, op, kc.Path,
				fmt.Sprintf("failed to load key %d", i), err)
		}
		kp, err := NewReportKeypair(priv)
		if err != nil {
			return nil, reporterr.NewWithPath(reporterr.KindConfiguration, op, kc.Path,
				fmt.Sprintf("unsupported key %d", i), err)
		}
		keypairs = append(keypairs, kp)
	}

	return NewKeySignerFromKeypairs(cfg.Identity, keypairs...)
}
