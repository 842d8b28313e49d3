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
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/sigstore/report-signing/pkg/reporterr"
)

// ReportsDirName is the directory holding the report files of a foldered
// package.
const ReportsDirName = "reports"

// FindReportsDir returns the first directory named "reports" below root.
//
// The search is depth first and pre-order, visiting entries of each
// directory in lexicographic order. Symbolic links are not followed, and
// each directory is visited at most once.
func FindReportsDir(fsys afero.Fs, root string) (string, error) {
	visited := make(map[string]bool)
	found, err := findReportsDir(fsys, filepath.Clean(root), visited)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", reporterr.NewWithPath(reporterr.KindLayout, "packaging.FindReportsDir", root,
			"no reports directory found", nil)
	}
	return found, nil
}

func findReportsDir(fsys afero.Fs, dir string, visited map[string]bool) (string, error) {
	if visited[dir] {
		return "", nil
	}
	visited[dir] = true

	f, err := fsys.Open(dir)
	if err != nil {
		return "", reporterr.IO("packaging.FindReportsDir", dir, err)
	}
	names, err := f.Readdirnames(-1)
	_ = f.Close()
	if err != nil {
		return "", reporterr.IO("packaging.FindReportsDir", dir, err)
	}
	sort.Strings(names)

	for _, name := range names {
		p := filepath.Join(dir, name)
		info, err := lstat(fsys, p)
		if err != nil {
			return "", reporterr.IO("packaging.FindReportsDir", p, err)
		}
		if !info.IsDir() {
			continue
		}
		if name == ReportsDirName {
			return p, nil
		}
		found, err := findReportsDir(fsys, p, visited)
		if err != nil || found != "" {
			return found, err
		}
	}
	return "", nil
}

func lstat(fsys afero.Fs, p string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(p)
		return info, err
	}
	return fsys.Stat(p)
}
