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

package signature

import (
	"testing"

	protobundle "github.com/sigstore/protobuf-specs/gen/pb-go/bundle/v1"
	protocommon "github.com/sigstore/protobuf-specs/gen/pb-go/common/v1"
	protodsse "github.com/sigstore/protobuf-specs/gen/pb-go/dsse"
	"github.com/sigstore/sigstore-go/pkg/bundle"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/sigstore/report-signing/pkg/utils"
)

const keyHint = "4f2c9e0d"

func testEnvelope() *protodsse.Envelope {
	return &protodsse.Envelope{
		PayloadType: utils.InTotoJSONPayloadType,
		Payload:     []byte(`{"_type":"https://in-toto.io/Statement/v1"}`),
		Signatures:  []*protodsse.Signature{{Sig: []byte("sig"), Keyid: keyHint}},
	}
}

func TestWriteAndRead(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s, err := New(testEnvelope(), keyHint)
	require.NoError(t, err)
	assert.Equal(t, utils.BundleMediaType, s.Bundle().GetMediaType())

	path := "/out/annualReport_signed.zip" + utils.AttestationSuffix
	require.NoError(t, afero.WriteFile(fsys, path, []byte("stale"), 0o644))
	require.NoError(t, s.Write(fsys, path))

	leftover, err := afero.Exists(fsys, path+".tmp")
	require.NoError(t, err)
	assert.False(t, leftover)

	loaded, err := Read(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, keyHint, loaded.KeyHint())
	assert.Equal(t, utils.InTotoJSONPayloadType, loaded.Bundle().GetDsseEnvelope().GetPayloadType())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, keyHint)
	assert.Error(t, err)
	_, err = New(testEnvelope(), "")
	assert.ErrorContains(t, err, "key hint")
}

func TestRead_Errors(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := Read(fsys, "/missing.json")
	assert.ErrorContains(t, err, "reading bundle")

	require.NoError(t, afero.WriteFile(fsys, "/bad.json", []byte("{not json"), 0o644))
	_, err = Read(fsys, "/bad.json")
	assert.ErrorContains(t, err, "parsing bundle")

	require.NoError(t, afero.WriteFile(fsys, "/empty.json", []byte("{}"), 0o644))
	_, err = Read(fsys, "/empty.json")
	assert.Error(t, err)

	// A structurally valid bundle that names no key is refused.
	b, err := bundle.NewBundle(&protobundle.Bundle{
		MediaType: utils.BundleMediaType,
		VerificationMaterial: &protobundle.VerificationMaterial{
			Content: &protobundle.VerificationMaterial_PublicKey{
				PublicKey: &protocommon.PublicKeyIdentifier{},
			},
		},
		Content: &protobundle.Bundle_DsseEnvelope{DsseEnvelope: testEnvelope()},
	})
	if err == nil {
		data, err := protojson.Marshal(b.Bundle)
		require.NoError(t, err)
		require.NoError(t, afero.WriteFile(fsys, "/nohint.json", data, 0o644))
		_, err = Read(fsys, "/nohint.json")
		assert.Error(t, err)
	}
}
