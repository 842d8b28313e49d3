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

// Package signing wraps signing keys behind the narrow capability report
// manifests need: given a message, return one signature string per key,
// and report the identity the signatures are made under.
package signing

import (
	"encoding/base64"
	"fmt"
)

// Signer produces signatures over report digests.
type Signer interface {
	// Sign returns one signature per configured key, in key order.
	Sign(message []byte) ([]string, error)

	// Identity returns the signer identity label recorded as aid.
	Identity() string

	// KeyCount returns the number of configured keys.
	KeyCount() int
}

// EncodeSignature renders raw signature bytes as the manifest string form.
func EncodeSignature(sig []byte) string {
	return base64.RawURLEncoding.EncodeToString(sig)
}

// DecodeSignature parses a manifest signature string.
func DecodeSignature(s string) ([]byte, error) {
	sig, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return sig, nil
}
