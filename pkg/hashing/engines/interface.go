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

// Package hashengines names the digest algorithms usable in report
// manifests. An engine registered as "sha256" produces digests written as
// "sha256-<hex>", so names never contain the prefix separator.
package hashengines

import (
	"github.com/sigstore/report-signing/pkg/hashing/digests"
)

// HashEngine produces a digest tagged with its algorithm name.
type HashEngine interface {
	Compute() (digests.Digest, error)
	DigestName() string
	// DigestSize is the raw digest length in bytes.
	DigestSize() int
}

// Streaming accepts input incrementally. Reset drops all input so far and
// seeds the state with data, which may be nil.
type Streaming interface {
	Update(data []byte)
	Reset(data []byte)
}

// StreamingHashEngine is what the registry hands out.
type StreamingHashEngine interface {
	HashEngine
	Streaming
}
