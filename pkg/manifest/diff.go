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
	"sort"

	"github.com/sigstore/report-signing/pkg/hashing/digests"
)

// Diff lists how the digests recomputed from package content differ from
// the ones a manifest records. Every slice is sorted by file.
type Diff struct {
	// Extra files have content but no manifest entry.
	Extra []string
	// Missing files have a manifest entry but no content.
	Missing    []string
	Mismatches []Mismatch
}

// Mismatch is a file whose recorded and recomputed digests differ.
type Mismatch struct {
	File     string
	Recorded string
	Computed string
}

// Empty reports whether the manifests agree.
func (d *Diff) Empty() bool {
	return len(d.Extra) == 0 && len(d.Missing) == 0 && len(d.Mismatches) == 0
}

// Compare diffs computed, built from package content, against recorded,
// read from the package. A nil manifest has no entries. When a manifest
// lists a file twice the last entry counts.
func Compare(computed, recorded *Manifest) *Diff {
	have := digestsByFile(computed)
	want := digestsByFile(recorded)

	files := make([]string, 0, len(have)+len(want))
	for f := range have {
		files = append(files, f)
	}
	for f := range want {
		if _, ok := have[f]; !ok {
			files = append(files, f)
		}
	}
	sort.Strings(files)

	d := &Diff{Extra: []string{}, Missing: []string{}, Mismatches: []Mismatch{}}
	for _, f := range files {
		got, inContent := have[f]
		exp, inManifest := want[f]
		switch {
		case !inManifest:
			d.Extra = append(d.Extra, f)
		case !inContent:
			d.Missing = append(d.Missing, f)
		case !sameDigest(got, exp):
			d.Mismatches = append(d.Mismatches, Mismatch{File: f, Recorded: exp, Computed: got})
		}
	}
	return d
}

// sameDigest compares prefixed digests by value, so hex case does not
// matter. Strings that do not parse only match themselves.
func sameDigest(a, b string) bool {
	if a == b {
		return true
	}
	da, errA := digests.ParsePrefixed(a)
	db, errB := digests.ParsePrefixed(b)
	return errA == nil && errB == nil && da.Equal(db)
}

func digestsByFile(m *Manifest) map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for _, sig := range m.DocumentInfo.Signatures {
		out[sig.File] = sig.Digest
	}
	return out
}
