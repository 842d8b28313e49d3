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

// Package scratch allocates private working directories for one unit of
// report packaging work.
package scratch

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Dir is a temporary directory owned by a single unit of work.
//
// Callers defer Remove immediately after New so the tree is discarded on
// every exit path.
type Dir struct {
	fs   afero.Fs
	path string
}

// New creates a fresh directory under the filesystem's temp location.
// prefix is used in the directory name to ease debugging.
func New(fsys afero.Fs, prefix string) (*Dir, error) {
	path, err := afero.TempDir(fsys, "", "report-signing-"+prefix+"-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return &Dir{fs: fsys, path: path}, nil
}

// Path returns the root of the scratch directory.
func (d *Dir) Path() string {
	return d.path
}

// Join returns a path below the scratch root.
func (d *Dir) Join(elem ...string) string {
	return filepath.Join(append([]string{d.path}, elem...)...)
}

// Sub creates and returns a subdirectory below the scratch root.
func (d *Dir) Sub(name string) (string, error) {
	p := d.Join(name)
	if err := d.fs.MkdirAll(p, 0o755); err != nil {
		return "", fmt.Errorf("create scratch subdirectory %q: %w", p, err)
	}
	return p, nil
}

// Remove deletes the scratch tree. It is safe to call more than once.
func (d *Dir) Remove() error {
	if d == nil || d.path == "" {
		return nil
	}
	if err := d.fs.RemoveAll(d.path); err != nil {
		return fmt.Errorf("remove scratch directory %q: %w", d.path, err)
	}
	d.path = ""
	return nil
}
