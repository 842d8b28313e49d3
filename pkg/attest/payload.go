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

package attest

import (
	"encoding/json"
	"fmt"

	intoto "github.com/in-toto/attestation/go/v1"
	"google.golang.org/protobuf/encoding/protojson"
	structpb "google.golang.org/protobuf/types/known/structpb"

	"github.com/sigstore/report-signing/pkg/hashing/digests"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/utils"
)

// Payload is the in-toto statement attesting a signed report package.
//
// The subject is the package archive, identified by its file name and
// digest. The predicate is the package manifest, verbatim.
type Payload struct {
	Statement *intoto.Statement
}

// NewPayload creates the statement for a package called name with archive
// digest pkgDigest and manifest m.
func NewPayload(name string, pkgDigest digests.Digest, m *manifest.Manifest) (*Payload, error) {
	raw, err := manifest.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	var predicateMap map[string]interface{}
	if err := json.Unmarshal(raw, &predicateMap); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	predicateStruct, err := structpb.NewStruct(predicateMap)
	if err != nil {
		return nil, fmt.Errorf("failed to build predicate struct: %w", err)
	}

	subject := &intoto.ResourceDescriptor{
		Name: name,
		Digest: map[string]string{
			pkgDigest.Algorithm(): pkgDigest.Hex(),
		},
	}

	statement := &intoto.Statement{
		Type:          utils.InTotoStatementType,
		Subject:       []*intoto.ResourceDescriptor{subject},
		PredicateType: utils.PredicateType,
		Predicate:     predicateStruct,
	}
	return &Payload{Statement: statement}, nil
}

// ToJSON serializes the payload to JSON format suitable for DSSE.
func (p *Payload) ToJSON() ([]byte, error) {
	opts := protojson.MarshalOptions{
		UseProtoNames:   true,
		EmitUnpopulated: false,
	}
	return opts.Marshal(p.Statement)
}

// PayloadFromJSON deserializes a payload from JSON.
func PayloadFromJSON(data []byte) (*Payload, error) {
	statement := &intoto.Statement{}
	if err := protojson.Unmarshal(data, statement); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement: %w", err)
	}
	return &Payload{Statement: statement}, nil
}

// Manifest decodes the manifest carried as predicate.
func (p *Payload) Manifest() (*manifest.Manifest, error) {
	if p.Statement.GetPredicate() == nil {
		return nil, fmt.Errorf("statement has no predicate")
	}
	raw, err := protojson.Marshal(p.Statement.GetPredicate())
	if err != nil {
		return nil, fmt.Errorf("failed to encode predicate: %w", err)
	}
	return manifest.Unmarshal(raw)
}

// SubjectDigest returns the subject digest recorded for algorithm.
func (p *Payload) SubjectDigest(algorithm string) (string, error) {
	subjects := p.Statement.GetSubject()
	if len(subjects) != 1 {
		return "", fmt.Errorf("expected one subject, got %d", len(subjects))
	}
	d, ok := subjects[0].GetDigest()[algorithm]
	if !ok {
		return "", fmt.Errorf("subject has no %s digest", algorithm)
	}
	return d, nil
}
