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

package packaging

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigstore/report-signing/pkg/reporterr"
)

func TestFindReportsDir(t *testing.T) {
	tests := []struct {
		name string
		dirs []string
		want string
	}{
		{
			name: "top level",
			dirs: []string{"/x/reports"},
			want: "/x/reports",
		},
		{
			name: "one folder deep",
			dirs: []string{"/x/annualReport/META-INF", "/x/annualReport/reports"},
			want: "/x/annualReport/reports",
		},
		{
			name: "lexicographic first wins",
			dirs: []string{"/x/b/reports", "/x/a/deep/reports"},
			want: "/x/a/deep/reports",
		},
		{
			name: "pre-order prefers a parent before its children",
			dirs: []string{"/x/a/reports/reports"},
			want: "/x/a/reports",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			for _, d := range tt.dirs {
				require.NoError(t, fsys.MkdirAll(d, 0o755))
			}
			got, err := FindReportsDir(fsys, "/x")
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestFindReportsDir_FileNamedReportsIsIgnored(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/x/reports", []byte("not a dir"), 0o644))

	_, err := FindReportsDir(fsys, "/x")
	require.Error(t, err)
	assert.True(t, reporterr.IsKind(err, reporterr.KindLayout))
}

func TestFindReportsDir_MissingRoot(t *testing.T) {
	_, err := FindReportsDir(afero.NewMemMapFs(), "/nope")
	require.Error(t, err)
	assert.True(t, reporterr.IsKind(err, reporterr.KindIO))
}
