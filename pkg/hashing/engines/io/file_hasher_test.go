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

package io

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hashengines "github.com/sigstore/report-signing/pkg/hashing/engines"
	"github.com/sigstore/report-signing/pkg/hashing/engines/memory"
)

const abcdSHA256 = "88d4266fd4e6338d13b845fcf289579d209c897823b9217da3e161936f031589"

// countingEngine records how many Update calls a computation makes.
type countingEngine struct {
	hashengines.StreamingHashEngine
	updates int
}

func (c *countingEngine) Update(data []byte) {
	c.updates++
	c.StreamingHashEngine.Update(data)
}

func TestFileHasher_ChunkSizes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/reports/doc1.xml", []byte("abcd"), 0o644))

	tests := []struct {
		name        string
		chunkSize   int
		wantUpdates int
	}{
		{"default", 0, 1},
		{"one byte", 1, 4},
		{"uneven", 3, 2},
		{"larger than file", 8192, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &countingEngine{StreamingHashEngine: memory.NewSHA256()}
			h, err := New(fsys, "/reports/doc1.xml", engine, tt.chunkSize)
			require.NoError(t, err)

			d, err := h.Compute()
			require.NoError(t, err)
			assert.Equal(t, "sha256-"+abcdSHA256, d.Prefixed())
			assert.Equal(t, tt.wantUpdates, engine.updates)

			again, err := h.Compute()
			require.NoError(t, err)
			assert.True(t, d.Equal(again), "repeated Compute must not accumulate state")
		})
	}
}

func TestFileHasher_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	engine := memory.NewSHA256()

	_, err := New(nil, "a", engine, 0)
	assert.Error(t, err)
	_, err = New(fsys, "", engine, 0)
	assert.Error(t, err)
	_, err = New(fsys, "a", nil, 0)
	assert.Error(t, err)
	_, err = New(fsys, "a", engine, -1)
	assert.Error(t, err)

	h, err := New(fsys, "/missing.xml", engine, 0)
	require.NoError(t, err)
	assert.Equal(t, "/missing.xml", h.Path())
	_, err = h.Compute()
	assert.ErrorContains(t, err, "/missing.xml")
}

func TestDigest(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "annualReport_signed.zip", []byte("abcd"), 0o644))

	d, err := Digest(fsys, "annualReport_signed.zip", "sha256")
	require.NoError(t, err)
	assert.Equal(t, abcdSHA256, d.Hex())

	b3, err := Digest(fsys, "annualReport_signed.zip", "blake3")
	require.NoError(t, err)
	assert.Equal(t, "blake3", b3.Algorithm())
	assert.Equal(t, 32, b3.Size())

	_, err = Digest(fsys, "annualReport_signed.zip", "md5")
	assert.Error(t, err)
}
