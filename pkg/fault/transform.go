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

package fault

import (
	"fmt"

	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

const transformOp = "fault.transform"

// Transform corrupts a manifest. The input is never modified. A nil
// result with a nil error means the manifest file is to be removed.
type Transform func(*manifest.Manifest) (*manifest.Manifest, error)

// TransformFor returns the transform of kind k. unknownIdentity is used by
// WrongIdentity; empty selects UnknownIdentity.
func TransformFor(k Kind, unknownIdentity string) (Transform, error) {
	switch k {
	case MissingSignature:
		return dropFirstSignature, nil
	case NoSignature:
		return dropAllSignatures, nil
	case RemoveManifest:
		return removeManifest, nil
	case WrongIdentity:
		if unknownIdentity == "" {
			unknownIdentity = UnknownIdentity
		}
		return replaceIdentity(unknownIdentity), nil
	default:
		return nil, reporterr.New(reporterr.KindConfiguration, transformOp, fmt.Sprintf("unknown fault kind %q", k), nil)
	}
}

func requireSignatures(m *manifest.Manifest, what string) error {
	if m == nil || len(m.Signatures()) == 0 {
		return reporterr.New(reporterr.KindFaultPrecondition, transformOp, "no signatures to "+what, nil)
	}
	return nil
}

func dropFirstSignature(m *manifest.Manifest) (*manifest.Manifest, error) {
	if err := requireSignatures(m, "remove"); err != nil {
		return nil, err
	}
	out := m.Clone()
	out.DocumentInfo.Signatures = out.DocumentInfo.Signatures[1:]
	return out, nil
}

func dropAllSignatures(m *manifest.Manifest) (*manifest.Manifest, error) {
	if err := requireSignatures(m, "remove"); err != nil {
		return nil, err
	}
	out := m.Clone()
	out.DocumentInfo.Signatures = []manifest.Signature{}
	return out, nil
}

func removeManifest(*manifest.Manifest) (*manifest.Manifest, error) {
	return nil, nil
}

// replaceIdentity relabels every entry. An empty signature list is
// rewritten unchanged.
func replaceIdentity(aid string) Transform {
	return func(m *manifest.Manifest) (*manifest.Manifest, error) {
		if m == nil {
			return nil, reporterr.New(reporterr.KindFaultPrecondition, transformOp, "no manifest to relabel", nil)
		}
		out := m.Clone()
		for i := range out.DocumentInfo.Signatures {
			out.DocumentInfo.Signatures[i].AID = aid
		}
		return out, nil
	}
}
