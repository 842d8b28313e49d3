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

// Package key implements report signing with local private keys.
package key

import (
	"crypto"
	"fmt"

	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signing"
)

// Ensure KeySigner implements signing.Signer at compile time.
var _ signing.Signer = (*KeySigner)(nil)

// KeySigner signs report digests with one or more local keys.
//
//nolint:revive
type KeySigner struct {
	identity string
	keypairs []*ReportKeypair
}

// NewKeySignerFromKeypairs builds a signer from already loaded keypairs.
func NewKeySignerFromKeypairs(identity string, keypairs ...*ReportKeypair) (*KeySigner, error) {
	if identity == "" {
		return nil, reporterr.New(reporterr.KindConfiguration, "key.NewKeySignerFromKeypairs", "signer identity is required", nil)
	}
	if len(keypairs) == 0 {
		return nil, reporterr.New(reporterr.KindConfiguration, "key.NewKeySignerFromKeypairs", "at least one signing key is required", nil)
	}
	return &KeySigner{identity: identity, keypairs: keypairs}, nil
}

// Sign returns one encoded signature per key. Each signature is verified
// with its own key before it is accepted.
func (s *KeySigner) Sign(message []byte) ([]string, error) {
	sigs := make([]string, 0, len(s.keypairs))
	for i, kp := range s.keypairs {
		raw, err := kp.SignMessage(message)
		if err != nil {
			return nil, reporterr.New(reporterr.KindSigning, "key.Sign", fmt.Sprintf("key %d failed to sign", i), err)
		}
		sigs = append(sigs, signing.EncodeSignature(raw))
	}
	return sigs, nil
}

// Identity returns the signer identity label.
func (s *KeySigner) Identity() string {
	return s.identity
}

// KeyCount returns the number of signing keys.
func (s *KeySigner) KeyCount() int {
	return len(s.keypairs)
}

// Keypairs returns the underlying keypairs in signature order.
func (s *KeySigner) Keypairs() []*ReportKeypair {
	return append([]*ReportKeypair(nil), s.keypairs...)
}

// PublicKeys returns the public keys in signature order.
func (s *KeySigner) PublicKeys() []crypto.PublicKey {
	keys := make([]crypto.PublicKey, len(s.keypairs))
	for i, kp := range s.keypairs {
		keys[i] = kp.GetPublicKey()
	}
	return keys
}
