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

package manifest

import (
	"fmt"
	"path"
	"strings"

	"github.com/sigstore/report-signing/pkg/logging"
)

// PathMode selects how a report file's manifest path is derived.
type PathMode int

const (
	// PathFlat records the file's base name only.
	PathFlat PathMode = iota

	// PathNested records "<parentFolderName>/<baseName>".
	PathNested
)

// String returns the string representation of a path mode.
func (p PathMode) String() string {
	switch p {
	case PathFlat:
		return "flat"
	case PathNested:
		return "nested"
	default:
		return "unknown"
	}
}

// ParsePathMode parses "flat" or "nested".
func ParsePathMode(s string) (PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return PathFlat, nil
	case "nested":
		return PathNested, nil
	default:
		return PathFlat, fmt.Errorf("unknown path mode %q", s)
	}
}

// RelativePath returns the manifest path of a file called name located in
// a folder called parent.
func (p PathMode) RelativePath(parent, name string) string {
	if p == PathNested {
		return path.Join(parent, name)
	}
	return name
}

// Signer produces one signature string per configured key for a message.
type Signer interface {
	Sign(message []byte) ([]string, error)
}

// BuildOptions configures Build.
type BuildOptions struct {
	// PathMode selects flat or nested file paths.
	PathMode PathMode

	// Signer signs the encoded part of every digest.
	Signer Signer

	// Identity is recorded as the aid of every entry.
	Identity string

	// HashAlgorithm names a registered hash engine. Defaults to sha256.
	HashAlgorithm string

	// ChunkSize is the read size used while hashing; 0 selects the
	// hashing default.
	ChunkSize int

	// Logger receives per-file progress at debug level.
	Logger logging.Logger
}
