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

// Package attest writes and checks detached attestations for signed report
// packages: an in-toto statement over the package archive, signed into a
// DSSE envelope and stored as a Sigstore bundle next to the package.
package attest

import (
	"context"
	"crypto"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/config"
	"github.com/sigstore/report-signing/pkg/dsse"
	"github.com/sigstore/report-signing/pkg/hashing/digests"
	hashio "github.com/sigstore/report-signing/pkg/hashing/engines/io"
	"github.com/sigstore/report-signing/pkg/logging"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signature"
	"github.com/sigstore/report-signing/pkg/signing/key"
	"github.com/sigstore/report-signing/pkg/tracing"
	"github.com/sigstore/report-signing/pkg/utils"
	"github.com/sigstore/report-signing/pkg/verify"

	// Registers the built-in hash engines.
	_ "github.com/sigstore/report-signing/pkg/hashing/engines/memory"
)

const (
	createOp = "attest.Create"
	verifyOp = "attest.Verify"

	subjectAlgorithm = "sha256"
)

// BundlePath returns the attestation path of the package at pkg.
func BundlePath(pkg string) string {
	return pkg + utils.AttestationSuffix
}

// Attestor signs attestations with one keypair.
type Attestor struct {
	fs      afero.Fs
	keypair *key.ReportKeypair
	keyHash string
	logger  logging.Logger
}

// NewAttestor returns an attestor signing with kp.
func NewAttestor(fsys afero.Fs, kp *key.ReportKeypair, logger logging.Logger) (*Attestor, error) {
	keyHash, err := config.ComputePublicKeyHash(kp.GetPublicKey())
	if err != nil {
		return nil, reporterr.New(reporterr.KindConfiguration, createOp, "failed to compute public key hash", err)
	}
	return &Attestor{fs: fsys, keypair: kp, keyHash: keyHash, logger: logging.EnsureLogger(logger)}, nil
}

// Create writes the attestation of the package at pkg and returns its
// path.
func (a *Attestor) Create(ctx context.Context, pkg string) (string, error) {
	out := BundlePath(pkg)
	err := tracing.Run(ctx, createOp, map[string]interface{}{"package": pkg}, func(ctx context.Context) error {
		d, err := packageDigest(a.fs, pkg)
		if err != nil {
			return err
		}
		m, err := readManifest(a.fs, pkg)
		if err != nil {
			return err
		}

		payload, err := NewPayload(filepath.Base(pkg), d, m)
		if err != nil {
			return reporterr.NewWithPath(reporterr.KindSigning, createOp, pkg, "failed to build statement", err)
		}
		payloadJSON, err := payload.ToJSON()
		if err != nil {
			return reporterr.NewWithPath(reporterr.KindSigning, createOp, pkg, "failed to encode statement", err)
		}

		envelope, err := dsse.Sign(ctx, a.keypair, a.keyHash, utils.InTotoJSONPayloadType, payloadJSON)
		if err != nil {
			return reporterr.NewWithPath(reporterr.KindSigning, createOp, pkg, "failed to sign statement", err)
		}
		protoEnvelope, err := envelope.ToProtobuf()
		if err != nil {
			return reporterr.NewWithPath(reporterr.KindSigning, createOp, pkg, "failed to convert envelope", err)
		}

		sig, err := signature.New(protoEnvelope, a.keyHash)
		if err != nil {
			return reporterr.NewWithPath(reporterr.KindSigning, createOp, pkg, "failed to create bundle", err)
		}
		if err := sig.Write(a.fs, out); err != nil {
			return reporterr.IO(createOp, out, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	a.logger.Info("Wrote attestation %s", out)
	return out, nil
}

// Verify checks the attestation stored next to pkg against pub: the
// envelope signature, the payload type, and that the subject digest
// matches the package archive. It returns the verified payload.
func Verify(ctx context.Context, fsys afero.Fs, pkg string, pub crypto.PublicKey) (*Payload, error) {
	fail := func(msg string, err error) error {
		return reporterr.NewWithPath(reporterr.KindVerification, verifyOp, pkg, msg, err)
	}

	sig, err := signature.Read(fsys, BundlePath(pkg))
	if err != nil {
		return nil, reporterr.IO(verifyOp, BundlePath(pkg), err)
	}
	keyHash, err := config.ComputePublicKeyHash(pub)
	if err != nil {
		return nil, reporterr.New(reporterr.KindConfiguration, verifyOp, "unusable public key", err)
	}
	if sig.KeyHint() != keyHash {
		return nil, fail("attestation was made with another key", nil)
	}
	envelope, err := dsse.ExtractFromBundle(sig.Bundle())
	if err != nil {
		return nil, fail("bundle has no envelope", err)
	}
	if err := envelope.ValidateSignatureCount(); err != nil {
		return nil, fail("unexpected envelope signatures", err)
	}
	if err := envelope.ValidatePayloadType(utils.InTotoJSONPayloadType); err != nil {
		return nil, fail("unexpected payload type", err)
	}

	verifier, err := verify.CreateSignatureVerifier(pub)
	if err != nil {
		return nil, reporterr.New(reporterr.KindConfiguration, verifyOp, "unusable public key", err)
	}
	if err := envelope.Verify(ctx, verifier, pub); err != nil {
		return nil, fail("attestation signature does not verify", err)
	}

	raw, err := envelope.DecodePayload()
	if err != nil {
		return nil, fail("malformed payload", err)
	}
	payload, err := PayloadFromJSON(raw)
	if err != nil {
		return nil, fail("malformed statement", err)
	}
	if payload.Statement.GetPredicateType() != utils.PredicateType {
		return nil, fail("unexpected predicate type "+payload.Statement.GetPredicateType(), nil)
	}

	recorded, err := payload.SubjectDigest(subjectAlgorithm)
	if err != nil {
		return nil, fail("malformed subject", err)
	}
	actual, err := packageDigest(fsys, pkg)
	if err != nil {
		return nil, err
	}
	if recorded != actual.Hex() {
		return nil, fail("package digest does not match the attestation", nil)
	}
	return payload, nil
}

func packageDigest(fsys afero.Fs, pkg string) (digests.Digest, error) {
	d, err := hashio.Digest(fsys, pkg, subjectAlgorithm)
	if err != nil {
		return digests.Digest{}, reporterr.IO(createOp, pkg, err)
	}
	return d, nil
}

// readManifest returns the manifest of the package at pkg, or an empty
// manifest when it has none.
func readManifest(fsys afero.Fs, pkg string) (*manifest.Manifest, error) {
	r, err := archive.Open(fsys, pkg)
	if err != nil {
		return nil, reporterr.IO(createOp, pkg, err)
	}
	defer func() {
		_ = r.Close()
	}()

	name, ok := verify.FindManifestEntry(r.Entries())
	if !ok {
		return manifest.New([]manifest.Signature{}), nil
	}
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, reporterr.IO(createOp, pkg, err)
	}
	m, err := manifest.Unmarshal(data)
	if err != nil {
		return nil, reporterr.NewWithPath(reporterr.KindStructural, createOp, pkg, "malformed manifest", err)
	}
	return m, nil
}
