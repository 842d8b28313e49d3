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

// Package fault derives negative test fixtures from signed report
// packages. Each fixture applies exactly one corruption to the manifest of
// a copy of the package; the signed package itself is never modified.
package fault

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sigstore/report-signing/pkg/config"
)

// UnknownIdentity is the aid recorded by wrong-identity fixtures unless
// overridden.
const UnknownIdentity = config.DefaultUnknownIdentity

// Kind names one manifest corruption.
type Kind string

const (
	// MissingSignature drops the first signature entry.
	MissingSignature Kind = "missing-signature"
	// NoSignature empties the signature list.
	NoSignature Kind = "no-signature"
	// RemoveManifest deletes META-INF/reports.json.
	RemoveManifest Kind = "remove-manifest"
	// WrongIdentity replaces the aid of every entry.
	WrongIdentity Kind = "wrong-identity"
)

// AllKinds lists every kind in generation order.
var AllKinds = []Kind{MissingSignature, NoSignature, RemoveManifest, WrongIdentity}

var fixturePrefixes = map[Kind]string{
	MissingSignature: "genMissingSignature",
	NoSignature:      "genNoSignature",
	RemoveManifest:   "removeMetaInfReportsJson",
	WrongIdentity:    "wrongAid",
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fixturePrefixes[k]; !ok {
		return "", fmt.Errorf("unknown fault kind %q", s)
	}
	return k, nil
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Prefix returns the file name prefix of fixtures of this kind.
func (k Kind) Prefix() string {
	return fixturePrefixes[k]
}

// FixtureName returns the file name of the fixture derived from the signed
// package pkg: "<prefix>_<base><ext>".
func FixtureName(k Kind, pkg string) string {
	return k.Prefix() + "_" + filepath.Base(pkg)
}
