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

package utils

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// Errors returned by the path checks, wrapped with the offending field.
var (
	ErrPathRequired = errors.New("path is required")
	ErrPathNotFound = errors.New("path does not exist")
	ErrPathType     = errors.New("path has the wrong type")
)

// PathType is the kind of entry a path must name.
type PathType int

const (
	PathTypeFile PathType = iota
	PathTypeFolder
	PathTypeAny
)

func (t PathType) String() string {
	switch t {
	case PathTypeFile:
		return "file"
	case PathTypeFolder:
		return "directory"
	default:
		return "file or directory"
	}
}

// CheckPath verifies that path is set, exists on fsys and is of type want.
// field names the path in error messages, e.g. "keys[0].path".
func CheckPath(fsys afero.Fs, field, path string, want PathType) error {
	if path == "" {
		return fmt.Errorf("%s: %w", field, ErrPathRequired)
	}

	info, err := fsys.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %q: %w", field, path, ErrPathNotFound)
	case err != nil:
		return fmt.Errorf("checking %s %q: %w", field, path, err)
	}

	isDir := info.IsDir()
	if (want == PathTypeFile && isDir) || (want == PathTypeFolder && !isDir) {
		return fmt.Errorf("%s %q is not a %s: %w", field, path, want, ErrPathType)
	}
	return nil
}

// ValidateFileExists is CheckPath for a regular file.
func ValidateFileExists(fsys afero.Fs, field, path string) error {
	return CheckPath(fsys, field, path, PathTypeFile)
}

// ValidateMultiple runs CheckPath on every path, naming each as
// field[i]. The first failure is returned.
func ValidateMultiple(fsys afero.Fs, field string, paths []string, want PathType) error {
	for i, path := range paths {
		if err := CheckPath(fsys, fmt.Sprintf("%s[%d]", field, i), path, want); err != nil {
			return err
		}
	}
	return nil
}
