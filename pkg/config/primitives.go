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

package config

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/spf13/afero"
)

const encryptedCosignPEMType = "ENCRYPTED COSIGN PRIVATE KEY"

// KeyConfig handles cryptographic key file configuration.
//
// This provides a unified way to load private keys for signing report
// digests and public keys for verifying them.
type KeyConfig struct {
	// Path is the file path to the key (PEM format).
	Path string `mapstructure:"path" yaml:"path"`

	// Password decrypts an encrypted private key. Empty means unencrypted.
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// LoadPrivateKey loads a private key from the configured path.
//
// Supports PKCS8, SEC1 EC and PKCS1 RSA keys, and sigstore encrypted keys
// when a password is set.
func (c *KeyConfig) LoadPrivateKey(fsys afero.Fs) (crypto.PrivateKey, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("key path is required")
	}

	pemBytes, err := afero.ReadFile(fsys, c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	if block.Type == string(cryptoutils.EncryptedSigstorePrivateKeyPEMType) || block.Type == encryptedCosignPEMType {
		if c.Password == "" {
			return nil, fmt.Errorf("key is encrypted but no password was provided")
		}
		key, err := cryptoutils.UnmarshalPEMToPrivateKey(pemBytes, cryptoutils.StaticPasswordFunc([]byte(c.Password)))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		return key, nil
	}

	if c.Password != "" {
		return nil, fmt.Errorf("password provided but key is not encrypted")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	return nil, fmt.Errorf("failed to parse private key (unsupported format)")
}

// LoadPublicKey loads a public key from the configured path.
//
// Supports PKIX and PKCS1 public key formats.
// Validates that the key type is supported (ECDSA, RSA, Ed25519).
func (c *KeyConfig) LoadPublicKey(fsys afero.Fs) (crypto.PublicKey, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("key path is required")
	}

	pemBytes, err := afero.ReadFile(fsys, c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	// Try parsing as PKIX public key (most common format)
	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		return validatePublicKey(key)
	}

	// Try parsing as PKCS1 RSA public key
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return validatePublicKey(key)
	}

	return nil, fmt.Errorf("failed to parse public key (unsupported format)")
}

// validatePublicKey checks if the public key type is supported.
//
// Validates ECDSA curves (P-256, P-384, P-521), RSA keys, and Ed25519 keys.
func validatePublicKey(key interface{}) (crypto.PublicKey, error) {
	switch k := key.(type) {
	case *ecdsa.PublicKey:
		curveName := k.Curve.Params().Name
		if curveName != "P-256" && curveName != "P-384" && curveName != "P-521" {
			return nil, fmt.Errorf("unsupported elliptic curve: %s (supported: P-256, P-384, P-521)", curveName)
		}
		return k, nil
	case *rsa.PublicKey:
		return k, nil
	case ed25519.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", key)
	}
}

// ExtractPublicKey returns the public half of a supported private key.
func ExtractPublicKey(privateKey crypto.PrivateKey) (crypto.PublicKey, error) {
	switch k := privateKey.(type) {
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	case ed25519.PrivateKey:
		return k.Public(), nil
	default:
		return nil, fmt.Errorf("unsupported private key type: %T", privateKey)
	}
}

// ComputePublicKeyHash returns the hex SHA-256 of the PKIX DER encoding of
// a public key. It serves as the key hint in attestation bundles.
func ComputePublicKeyHash(publicKey crypto.PublicKey) (string, error) {
	der, err := cryptoutils.MarshalPublicKeyToDER(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

// ComputePublicKeyHashFromFile loads a public key and hashes it with
// ComputePublicKeyHash.
func ComputePublicKeyHashFromFile(fsys afero.Fs, path string) (string, error) {
	cfg := KeyConfig{Path: path}
	pub, err := cfg.LoadPublicKey(fsys)
	if err != nil {
		return "", err
	}
	return ComputePublicKeyHash(pub)
}
