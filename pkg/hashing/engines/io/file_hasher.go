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

// Package io digests files read through an afero filesystem.
package io

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/hashing/digests"
	hashengines "github.com/sigstore/report-signing/pkg/hashing/engines"
)

// DefaultChunkSize is the read size used when none is configured.
const DefaultChunkSize = 32 * 1024

var _ hashengines.HashEngine = (*FileHasher)(nil)

// FileHasher digests one file by streaming it through an engine in chunks.
// It is not safe for concurrent use.
type FileHasher struct {
	fs     afero.Fs
	path   string
	engine hashengines.StreamingHashEngine
	buf    []byte
}

// New returns a hasher for path. A chunkSize of 0 selects DefaultChunkSize.
func New(fsys afero.Fs, path string, engine hashengines.StreamingHashEngine, chunkSize int) (*FileHasher, error) {
	switch {
	case fsys == nil:
		return nil, errors.New("filesystem must not be nil")
	case path == "":
		return nil, errors.New("file path must be non-empty")
	case engine == nil:
		return nil, errors.New("hash engine must not be nil")
	case chunkSize < 0:
		return nil, fmt.Errorf("chunk size must be non-negative, got %d", chunkSize)
	case chunkSize == 0:
		chunkSize = DefaultChunkSize
	}
	return &FileHasher{fs: fsys, path: path, engine: engine, buf: make([]byte, chunkSize)}, nil
}

// Factory returns a FileHasher for one file.
type Factory func(fsys afero.Fs, path string) (*FileHasher, error)

// NewFactory returns a Factory pairing every file with a fresh engine of
// the named algorithm.
func NewFactory(algorithm string, chunkSize int) Factory {
	return func(fsys afero.Fs, path string) (*FileHasher, error) {
		engine, err := hashengines.Create(algorithm)
		if err != nil {
			return nil, err
		}
		return New(fsys, path, engine, chunkSize)
	}
}

// Digest hashes the file at path with the named algorithm.
func Digest(fsys afero.Fs, path, algorithm string) (digests.Digest, error) {
	h, err := NewFactory(algorithm, 0)(fsys, path)
	if err != nil {
		return digests.Digest{}, err
	}
	return h.Compute()
}

// Path returns the file this hasher reads.
func (h *FileHasher) Path() string { return h.path }

func (h *FileHasher) DigestName() string { return h.engine.DigestName() }

func (h *FileHasher) DigestSize() int { return h.engine.DigestSize() }

// Compute reads the whole file and returns its digest. Every call starts
// from a clean engine state.
func (h *FileHasher) Compute() (digests.Digest, error) {
	h.engine.Reset(nil)

	f, err := h.fs.Open(h.path)
	if err != nil {
		return digests.Digest{}, fmt.Errorf("open %q: %w", h.path, err)
	}
	defer f.Close()

	// The struct wrapper hides any WriterTo on f so reads honor the chunk size.
	if _, err := io.CopyBuffer(engineWriter{h.engine}, struct{ io.Reader }{f}, h.buf); err != nil {
		return digests.Digest{}, fmt.Errorf("read %q: %w", h.path, err)
	}
	return h.engine.Compute()
}

type engineWriter struct {
	engine hashengines.Streaming
}

func (w engineWriter) Write(p []byte) (int, error) {
	w.engine.Update(p)
	return len(p), nil
}
