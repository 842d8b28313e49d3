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

// Package dsse signs and verifies Dead Simple Signing Envelopes around
// report package attestations.
//
// Envelopes are produced with the go-securesystemslib/dsse envelope signer,
// which is also the type sigstore-go returns from
// bundle.Envelope.RawEnvelope(). ToProtobuf converts them to the Sigstore
// protobuf form used inside bundles.
package dsse

import (
	"bytes"
	"context"
	"crypto"
	"encoding/base64"
	"fmt"

	dsse_lib "github.com/secure-systems-lab/go-securesystemslib/dsse"
	protodsse "github.com/sigstore/protobuf-specs/gen/pb-go/dsse"
	"github.com/sigstore/sigstore-go/pkg/bundle"
	sigstoresig "github.com/sigstore/sigstore/pkg/signature"

	"github.com/sigstore/report-signing/pkg/config"
)

// Envelope wraps a DSSE envelope with utility methods.
type Envelope struct {
	raw *dsse_lib.Envelope
}

// NewEnvelope creates a new DSSE envelope wrapper from a raw envelope.
func NewEnvelope(raw *dsse_lib.Envelope) *Envelope {
	return &Envelope{raw: raw}
}

// DataSigner signs the pre-authentication encoding of an envelope.
// sigstore-go keypairs satisfy it.
type DataSigner interface {
	SignData(ctx context.Context, data []byte) ([]byte, []byte, error)
	GetPublicKey() crypto.PublicKey
}

type envelopeSigner struct {
	signer DataSigner
	keyID  string
}

func (s *envelopeSigner) Sign(ctx context.Context, data []byte) ([]byte, error) {
	sig, _, err := s.signer.SignData(ctx, data)
	return sig, err
}

func (s *envelopeSigner) KeyID() (string, error) {
	return s.keyID, nil
}

type envelopeVerifier struct {
	verifier sigstoresig.Verifier
	public   crypto.PublicKey
	keyID    string
}

func (v *envelopeVerifier) Verify(_ context.Context, data, sig []byte) error {
	return v.verifier.VerifySignature(bytes.NewReader(sig), bytes.NewReader(data))
}

// KeyID returns the key hash attestations stamp on their signatures.
// Signatures carrying another non-empty key id are skipped.
func (v *envelopeVerifier) KeyID() (string, error) {
	return v.keyID, nil
}

func (v *envelopeVerifier) Public() crypto.PublicKey {
	return v.public
}

// Sign wraps payload in an envelope carrying one signature by signer.
// keyID may be empty.
func Sign(ctx context.Context, signer DataSigner, keyID, payloadType string, payload []byte) (*Envelope, error) {
	es, err := dsse_lib.NewEnvelopeSigner(&envelopeSigner{signer: signer, keyID: keyID})
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope signer: %w", err)
	}
	raw, err := es.SignPayload(ctx, payloadType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign envelope: %w", err)
	}
	return &Envelope{raw: raw}, nil
}

// Verify checks that at least one envelope signature verifies under
// verifier, whose public key is pub. Signatures are matched to the key by
// config.ComputePublicKeyHash; signatures without a key id are always tried.
func (e *Envelope) Verify(ctx context.Context, verifier sigstoresig.Verifier, pub crypto.PublicKey) error {
	keyID, err := config.ComputePublicKeyHash(pub)
	if err != nil {
		return fmt.Errorf("failed to compute key id: %w", err)
	}
	ev, err := dsse_lib.NewEnvelopeVerifier(&envelopeVerifier{verifier: verifier, public: pub, keyID: keyID})
	if err != nil {
		return fmt.Errorf("failed to create envelope verifier: %w", err)
	}
	if _, err := ev.Verify(ctx, e.raw); err != nil {
		return fmt.Errorf("envelope signature verification failed: %w", err)
	}
	return nil
}

// ExtractFromBundle extracts a DSSE envelope from a Sigstore bundle.
func ExtractFromBundle(bndl *bundle.Bundle) (*Envelope, error) {
	envelope, err := bndl.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to extract envelope from bundle: %w", err)
	}

	dsseEnvelope := envelope.RawEnvelope()
	if dsseEnvelope == nil {
		return nil, fmt.Errorf("bundle does not contain a DSSE envelope")
	}

	return &Envelope{raw: dsseEnvelope}, nil
}

// ValidateSignatureCount checks that exactly one signature is present.
func (e *Envelope) ValidateSignatureCount() error {
	if len(e.raw.Signatures) == 0 {
		return fmt.Errorf("no signatures found in envelope")
	}
	if len(e.raw.Signatures) > 1 {
		return fmt.Errorf("multiple signatures not supported")
	}
	return nil
}

// ValidatePayloadType checks that the DSSE payload matches the expected type.
func (e *Envelope) ValidatePayloadType(expectedType string) error {
	if e.raw.PayloadType != expectedType {
		return fmt.Errorf("expected DSSE payload %s, but got %s",
			expectedType, e.raw.PayloadType)
	}
	return nil
}

// DecodePayload decodes the base64-encoded DSSE payload.
func (e *Envelope) DecodePayload() ([]byte, error) {
	if e.raw.Payload == "" {
		return nil, fmt.Errorf("envelope payload is empty")
	}
	payload, err := e.raw.DecodeB64Payload()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return payload, nil
}

// PayloadType returns the DSSE payload type.
func (e *Envelope) PayloadType() string {
	return e.raw.PayloadType
}

// RawEnvelope returns the underlying go-securesystemslib envelope.
func (e *Envelope) RawEnvelope() *dsse_lib.Envelope {
	return e.raw
}

// ToProtobuf converts the envelope to Sigstore protobuf format, decoding
// the base64 payload and signatures into raw bytes.
func (e *Envelope) ToProtobuf() (*protodsse.Envelope, error) {
	payloadBytes, err := base64.StdEncoding.DecodeString(e.raw.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	signatures := make([]*protodsse.Signature, len(e.raw.Signatures))
	for i, sig := range e.raw.Signatures {
		sigBytes, err := base64.StdEncoding.DecodeString(sig.Sig)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signature %d: %w", i, err)
		}
		signatures[i] = &protodsse.Signature{
			Sig:   sigBytes,
			Keyid: sig.KeyID,
		}
	}

	return &protodsse.Envelope{
		Payload:     payloadBytes,
		PayloadType: e.raw.PayloadType,
		Signatures:  signatures,
	}, nil
}
