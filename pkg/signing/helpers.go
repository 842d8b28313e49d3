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

package signing

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"path/filepath"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/spf13/afero"
)

// KeyPairFiles names the files written by WriteKeyPair.
type KeyPairFiles struct {
	PrivateKey string
	PublicKey  string
}

// GenerateKeyPair creates a fresh ECDSA P-256 key.
func GenerateKeyPair() (*ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return priv, nil
}

// WriteKeyPair writes <name>.key and <name>.pub into dir. A non-empty
// password encrypts the private key in the sigstore encrypted PEM format.
func WriteKeyPair(fsys afero.Fs, dir, name string, priv crypto.Signer, password string) (KeyPairFiles, error) {
	var privPEM []byte
	var err error
	if password != "" {
		der, encErr := cryptoutils.MarshalPrivateKeyToEncryptedDER(priv, cryptoutils.StaticPasswordFunc([]byte(password)))
		if encErr != nil {
			return KeyPairFiles{}, fmt.Errorf("failed to encrypt private key: %w", encErr)
		}
		privPEM = cryptoutils.PEMEncode(cryptoutils.EncryptedSigstorePrivateKeyPEMType, der)
	} else {
		privPEM, err = cryptoutils.MarshalPrivateKeyToPEM(priv)
		if err != nil {
			return KeyPairFiles{}, fmt.Errorf("failed to marshal private key: %w", err)
		}
	}

	pubPEM, err := cryptoutils.MarshalPublicKeyToPEM(priv.Public())
	if err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to marshal public key: %w", err)
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to create key directory: %w", err)
	}

	files := KeyPairFiles{
		PrivateKey: filepath.Join(dir, name+".key"),
		PublicKey:  filepath.Join(dir, name+".pub"),
	}
	if err := afero.WriteFile(fsys, files.PrivateKey, privPEM, 0o600); err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to write private key: %w", err)
	}
	if err := afero.WriteFile(fsys, files.PublicKey, pubPEM, 0o644); err != nil {
		return KeyPairFiles{}, fmt.Errorf("failed to write public key: %w", err)
	}
	return files, nil
}
