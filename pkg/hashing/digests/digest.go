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

// Package digests provides types for representing cryptographic hash digests.
//
// A Digest encapsulates both the algorithm name and the computed hash value.
// Report manifests carry digests in their prefixed textual form,
// "<algorithm>-<hex>", which Prefixed and ParsePrefixed convert to and from.
package digests

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// PrefixSeparator separates the algorithm tag from the encoded hash in the
// prefixed form of a digest.
const PrefixSeparator = "-"

// Digest represents a computed cryptographic hash digest.
//
// Fields are unexported and the value is copied on the way in and out, so a
// Digest can be shared freely once built.
type Digest struct {
	algorithm string // Name of the hash algorithm used
	value     []byte // Raw digest bytes
}

// NewDigest creates a new Digest with the specified algorithm and hash value.
//
// The value slice is copied.
func NewDigest(algorithm string, value []byte) Digest {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	return Digest{
		algorithm: algorithm,
		value:     valueCopy,
	}
}

// Algorithm returns the name of the hash algorithm used to compute this digest.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns a copy of the raw digest bytes.
func (d Digest) Value() []byte {
	valueCopy := make([]byte, len(d.value))
	copy(valueCopy, d.value)
	return valueCopy
}

// Hex returns the lowercase hexadecimal encoding of the digest value.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.value)
}

// Size returns the length in bytes of the digest value.
func (d Digest) Size() int {
	return len(d.value)
}

// Prefixed returns the manifest form of the digest: "<algorithm>-<hex>".
func (d Digest) Prefixed() string {
	return d.algorithm + PrefixSeparator + d.Hex()
}

// String returns "algorithm:hexvalue".
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.algorithm, d.Hex())
}

// Equal reports whether both digests use the same algorithm and value.
func (d Digest) Equal(other Digest) bool {
	if d.algorithm != other.algorithm {
		return false
	}
	return bytes.Equal(d.value, other.value)
}

// SplitPrefixed splits a prefixed digest string into its algorithm tag and
// its encoded hash. Only the first separator is significant.
func SplitPrefixed(prefixed string) (algorithm, encoded string, err error) {
	algorithm, encoded, ok := strings.Cut(prefixed, PrefixSeparator)
	if !ok || algorithm == "" || encoded == "" {
		return "", "", fmt.Errorf("digest %q is not of the form <algorithm>%s<encoded>", prefixed, PrefixSeparator)
	}
	return algorithm, encoded, nil
}

// ParsePrefixed parses a "<algorithm>-<hex>" string back into a Digest.
func ParsePrefixed(prefixed string) (Digest, error) {
	algorithm, encoded, err := SplitPrefixed(prefixed)
	if err != nil {
		return Digest{}, err
	}
	value, err := hex.DecodeString(encoded)
	if err != nil {
		return Digest{}, fmt.Errorf("digest %q has a malformed hex value: %w", prefixed, err)
	}
	return NewDigest(algorithm, value), nil
}
