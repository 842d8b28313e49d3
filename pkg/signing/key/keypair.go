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
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"fmt"

	protocommon "github.com/sigstore/protobuf-specs/gen/pb-go/common/v1"
	sigstoresign "github.com/sigstore/sigstore-go/pkg/sign"
	sigstoresig "github.com/sigstore/sigstore/pkg/signature"

	"github.com/sigstore/report-signing/pkg/signing"
)

var _ sigstoresign.Keypair = (*ReportKeypair)(nil)

// ReportKeypair wraps one private key used to sign report digests. It
// exposes the sigstore-go Keypair method set so the same key can also sign
// attestation bundles.
type ReportKeypair struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	hint       []byte
	algDetails sigstoresig.AlgorithmDetails
	sv         sigstoresig.SignerVerifier
}

// NewReportKeypair builds a keypair around an already loaded private key.
//
// Supports ECDSA (P-256, P-384, P-521), RSA, and Ed25519 keys.
func NewReportKeypair(privateKey crypto.PrivateKey) (*ReportKeypair, error) {
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key does not implement crypto.Signer")
	}
	pubKey := signer.Public()

	algDetails, hint, err := signing.InitializeKeypairData(pubKey)
	if err != nil {
		return nil, err
	}

	sv, err := sigstoresig.LoadSignerVerifier(privateKey, signing.HashForPublicKey(pubKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load signer: %w", err)
	}

	return &ReportKeypair{
		privateKey: signer,
		publicKey:  pubKey,
		hint:       hint,
		algDetails: algDetails,
		sv:         sv,
	}, nil
}

// SignMessage signs message and checks the result against the public key
// before returning it.
func (k *ReportKeypair) SignMessage(message []byte) ([]byte, error) {
	sig, err := k.sv.SignMessage(bytes.NewReader(message))
	if err != nil {
		return nil, err
	}
	if err := k.sv.VerifySignature(bytes.NewReader(sig), bytes.NewReader(message)); err != nil {
		return nil, fmt.Errorf("signature failed self-verification: %w", err)
	}
	return sig, nil
}

// GetHashAlgorithm returns the hash algorithm to compute the digest to sign.
func (k *ReportKeypair) GetHashAlgorithm() protocommon.HashAlgorithm {
	return k.algDetails.GetProtoHashType()
}

// GetSigningAlgorithm returns the signing algorithm of the key.
func (k *ReportKeypair) GetSigningAlgorithm() protocommon.PublicKeyDetails {
	return k.algDetails.GetSignatureAlgorithm()
}

// GetHint returns the fingerprint of the public key.
func (k *ReportKeypair) GetHint() []byte {
	return k.hint
}

// GetKeyAlgorithm returns the top-level key algorithm name.
func (k *ReportKeypair) GetKeyAlgorithm() string {
	return signing.KeyTypeToString(k.algDetails.GetKeyType())
}

// GetPublicKey returns the public key.
func (k *ReportKeypair) GetPublicKey() crypto.PublicKey {
	return k.publicKey
}

// GetPublicKeyPem returns the public key in PEM format.
func (k *ReportKeypair) GetPublicKeyPem() (string, error) {
	return signing.GetPublicKeyPEM(k.publicKey)
}

// SignData signs the given data using the wrapped private key.
// Returns the signature and the data that was signed (digest for RSA/ECDSA,
// raw data for Ed25519).
func (k *ReportKeypair) SignData(_ context.Context, data []byte) ([]byte, []byte, error) {
	hf := k.algDetails.GetHashType()

	dataToSign := signing.ComputeDigest(data, hf)

	sig, err := k.privateKey.Sign(rand.Reader, dataToSign, hf)
	if err != nil {
		return nil, nil, err
	}

	return sig, dataToSign, nil
}
