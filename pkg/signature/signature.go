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

// Package signature stores attestation envelopes as Sigstore bundles whose
// verification material names the signing key by hash.
package signature

import (
	"errors"
	"fmt"

	protobundle "github.com/sigstore/protobuf-specs/gen/pb-go/bundle/v1"
	protocommon "github.com/sigstore/protobuf-specs/gen/pb-go/common/v1"
	protodsse "github.com/sigstore/protobuf-specs/gen/pb-go/dsse"
	"github.com/sigstore/sigstore-go/pkg/bundle"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/sigstore/report-signing/pkg/utils"
)

// Signature is a Sigstore bundle carrying one DSSE envelope.
type Signature struct {
	bundle *bundle.Bundle
}

// New bundles envelope with keyHint, the hash of the signing public key.
func New(envelope *protodsse.Envelope, keyHint string) (*Signature, error) {
	if envelope == nil {
		return nil, errors.New("no envelope to bundle")
	}
	if keyHint == "" {
		return nil, errors.New("key hint is required")
	}
	b, err := bundle.NewBundle(&protobundle.Bundle{
		MediaType: utils.BundleMediaType,
		VerificationMaterial: &protobundle.VerificationMaterial{
			Content: &protobundle.VerificationMaterial_PublicKey{
				PublicKey: &protocommon.PublicKeyIdentifier{Hint: keyHint},
			},
		},
		Content: &protobundle.Bundle_DsseEnvelope{DsseEnvelope: envelope},
	})
	if err != nil {
		return nil, fmt.Errorf("building bundle: %w", err)
	}
	return &Signature{bundle: b}, nil
}

// Bundle returns the wrapped bundle.
func (s *Signature) Bundle() *bundle.Bundle {
	return s.bundle
}

// KeyHint returns the key hash recorded in the bundle.
func (s *Signature) KeyHint() string {
	return s.bundle.GetVerificationMaterial().GetPublicKey().GetHint()
}

// Write stores the bundle as JSON at path. The bytes go to a temporary file
// first and are renamed into place, so path never holds a partial bundle.
func (s *Signature) Write(fsys afero.Fs, path string) error {
	data, err := s.bundle.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling bundle: %w", err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}

// Read loads the bundle at path. It must carry a DSSE envelope and a key
// hint; anything else was not written by New.
func Read(fsys afero.Fs, path string) (*Signature, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	pb := &protobundle.Bundle{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, pb); err != nil {
		return nil, fmt.Errorf("parsing bundle: %w", err)
	}
	b, err := bundle.NewBundle(pb)
	if err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}

	s := &Signature{bundle: b}
	switch {
	case pb.GetDsseEnvelope() == nil:
		return nil, errors.New("bundle carries no DSSE envelope")
	case s.KeyHint() == "":
		return nil, errors.New("bundle names no public key")
	}
	return s, nil
}
