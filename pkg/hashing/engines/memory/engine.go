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

// Package memory holds the in-memory streaming engines that digest report
// files. Importing it registers sha256, blake2b and blake3 with the
// hashengines registry.
package memory

import (
	"crypto/sha256"
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"

	"github.com/sigstore/report-signing/pkg/hashing/digests"
	hashengines "github.com/sigstore/report-signing/pkg/hashing/engines"
)

var algorithms = []struct {
	name    string
	newHash func() hash.Hash
}{
	{"sha256", sha256.New},
	{"blake2b", newBLAKE2b},
	{"blake3", func() hash.Hash { return blake3.New() }},
}

func init() {
	for _, a := range algorithms {
		a := a
		hashengines.MustRegister(a.name, func() (hashengines.StreamingHashEngine, error) {
			return newEngine(a.name, a.newHash), nil
		})
	}
}

// newBLAKE2b returns an unkeyed 512-bit BLAKE2b; New512 only fails for
// oversized keys.
func newBLAKE2b() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

var _ hashengines.StreamingHashEngine = (*Engine)(nil)

// Engine feeds bytes into a hash.Hash and reports the sum as a digest
// tagged with the engine's algorithm name.
type Engine struct {
	name string
	h    hash.Hash
}

func newEngine(name string, newHash func() hash.Hash) *Engine {
	return &Engine{name: name, h: newHash()}
}

// NewSHA256 returns a SHA-256 engine, the default for report manifests.
func NewSHA256() *Engine { return newEngine("sha256", sha256.New) }

// NewBLAKE2b returns an unkeyed BLAKE2b-512 engine.
func NewBLAKE2b() *Engine { return newEngine("blake2b", newBLAKE2b) }

// NewBLAKE3 returns a 256-bit BLAKE3 engine.
func NewBLAKE3() *Engine { return newEngine("blake3", func() hash.Hash { return blake3.New() }) }

// Update appends data to the running hash. hash.Hash writes never fail.
func (e *Engine) Update(data []byte) {
	_, _ = e.h.Write(data)
}

// Reset discards the running state and seeds it with data.
func (e *Engine) Reset(data []byte) {
	e.h.Reset()
	e.Update(data)
}

// Compute returns the digest of everything written since the last Reset.
// It does not change the running state.
func (e *Engine) Compute() (digests.Digest, error) {
	return digests.NewDigest(e.name, e.h.Sum(nil)), nil
}

func (e *Engine) DigestName() string { return e.name }

func (e *Engine) DigestSize() int { return e.h.Size() }
