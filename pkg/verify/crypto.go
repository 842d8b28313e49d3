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
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"

	sigstoresig "github.com/sigstore/sigstore/pkg/signature"

	"github.com/sigstore/report-signing/pkg/signing"
)

// CreateSignatureVerifier creates a sigstore signature.Verifier from a crypto.PublicKey.
// Supports ECDSA (P-256, P-384, P-521), RSA (PKCS1v15 with SHA256), and Ed25519 keys.
func CreateSignatureVerifier(pubKey crypto.PublicKey) (sigstoresig.Verifier, error) {
	switch k := pubKey.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256(), elliptic.P384(), elliptic.P521():
			return sigstoresig.LoadECDSAVerifier(k, signing.HashForPublicKey(k))
		default:
			return nil, fmt.Errorf("unsupported ECDSA curve: %s", k.Curve.Params().Name)
		}
	case *rsa.PublicKey:
		return sigstoresig.LoadRSAPKCS1v15Verifier(k, crypto.SHA256)
	case ed25519.PublicKey:
		return sigstoresig.LoadED25519Verifier(k)
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", pubKey)
	}
}

// keyring verifies manifest signature strings against a set of keys.
type keyring struct {
	verifiers []sigstoresig.Verifier
}

func newKeyring(keys []crypto.PublicKey) (*keyring, error) {
	kr := &keyring{verifiers: make([]sigstoresig.Verifier, 0, len(keys))}
	for i, k := range keys {
		v, err := CreateSignatureVerifier(k)
		if err != nil {
			return nil, fmt.Errorf("public key %d: %w", i, err)
		}
		kr.verifiers = append(kr.verifiers, v)
	}
	return kr, nil
}

// verify reports whether encoded is a valid signature over message under
// any key of the ring.
func (kr *keyring) verify(encoded string, message []byte) bool {
	raw, err := signing.DecodeSignature(encoded)
	if err != nil {
		return false
	}
	for _, v := range kr.verifiers {
		if v.VerifySignature(bytes.NewReader(raw), bytes.NewReader(message)) == nil {
			return true
		}
	}
	return false
}
