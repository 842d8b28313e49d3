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

// Package archive reads and writes zip packages through an afero
// filesystem.
//
// Archives are written deterministically: entries are sorted, directories
// are recorded as explicit entries and every timestamp is pinned, so the
// same tree always produces the same bytes.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// deterministicTimestamp is the earliest time representable in a zip
// header.
var deterministicTimestamp = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxEntryBytes bounds how much a single entry may expand to on read.
const maxEntryBytes int64 = 1 << 30

// Entry describes one member of an archive.
type Entry struct {
	Name  string
	IsDir bool
}

// Reader gives random access to the members of an archive.
type Reader struct {
	zr     *zip.Reader
	closer io.Closer
	files  map[string]*zip.File
}

// Open opens the archive at archivePath on fsys.
func Open(fsys afero.Fs, archivePath string) (*Reader, error) {
	f, err := fsys.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read archive %q: %w", archivePath, err)
	}
	return newReader(zr, f), nil
}

// OpenBytes opens an archive held in memory, such as a zip embedded in
// another package.
func OpenBytes(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return newReader(zr, nil), nil
}

func newReader(zr *zip.Reader, closer io.Closer) *Reader {
	files := make(map[string]*zip.File, len(zr.File))
	for _, file := range zr.File {
		files[file.Name] = file
	}
	return &Reader{zr: zr, closer: closer, files: files}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Entries lists the archive members in stored order.
func (r *Reader) Entries() []Entry {
	entries := make([]Entry, 0, len(r.zr.File))
	for _, file := range r.zr.File {
		entries = append(entries, Entry{
			Name:  file.Name,
			IsDir: file.FileInfo().IsDir() || strings.HasSuffix(file.Name, "/"),
		})
	}
	return entries
}

// ReadFile returns the content of the member called name.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	file, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("archive entry %q: %w", name, os.ErrNotExist)
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %q: %w", name, err)
	}
	defer func() {
		_ = rc.Close()
	}()
	payload, err := io.ReadAll(io.LimitReader(rc, maxEntryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read archive entry %q: %w", name, err)
	}
	if int64(len(payload)) > maxEntryBytes {
		return nil, fmt.Errorf("archive entry %q too large", name)
	}
	return payload, nil
}

// Entries lists the members of the archive at archivePath.
func Entries(fsys afero.Fs, archivePath string) ([]Entry, error) {
	r, err := Open(fsys, archivePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return r.Entries(), nil
}

// Extract unpacks the archive at archivePath into destDir, creating
// directories as needed and overwriting existing files.
func Extract(fsys afero.Fs, archivePath, destDir string) error {
	r, err := Open(fsys, archivePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Close()
	}()

	if err := fsys.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	for _, file := range r.zr.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() || strings.HasSuffix(file.Name, "/") {
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", target, err)
			}
			continue
		}
		if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", filepath.Dir(target), err)
		}
		if err := extractFile(fsys, file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(fsys afero.Fs, file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", file.Name, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := fsys.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create %q: %w", target, err)
	}
	n, err := io.Copy(out, io.LimitReader(rc, maxEntryBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("extract %q: %w", file.Name, err)
	}
	if n > maxEntryBytes {
		return fmt.Errorf("archive entry %q too large", file.Name)
	}
	return nil
}

// safeJoin resolves an entry name below root and rejects names that would
// escape it.
func safeJoin(root, name string) (string, error) {
	slashed := strings.ReplaceAll(name, "\\", "/")
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
		}
	}
	rel := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if rel == "" {
		return root, nil
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}

// Builder accumulates files and folders and writes them as one archive.
type Builder struct {
	fs      afero.Fs
	entries map[string]builderEntry
}

type builderEntry struct {
	source string // empty for directories
	dir    bool
}

// NewBuilder starts an empty archive whose sources are read from fsys.
func NewBuilder(fsys afero.Fs) *Builder {
	return &Builder{fs: fsys, entries: make(map[string]builderEntry)}
}

// AddFile adds the file at src under the archive name name.
func (b *Builder) AddFile(src, name string) error {
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	if name == "" {
		return errors.New("archive entry name must be non-empty")
	}
	info, err := b.fs.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %q: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory", src)
	}
	b.addParents(name)
	b.entries[name] = builderEntry{source: src}
	return nil
}

// AddFolder adds the contents of dir recursively, with archive names
// rooted at prefix. An empty prefix places dir's children at the top level
// of the archive.
func (b *Builder) AddFolder(dir, prefix string) error {
	prefix = strings.Trim(filepath.ToSlash(prefix), "/")
	if prefix != "" {
		b.addDir(prefix)
	}
	return afero.Walk(b.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %q: %w", p, err)
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)
		if prefix != "" {
			name = prefix + "/" + name
		}
		switch {
		case info.IsDir():
			b.addDir(name)
		case info.Mode().IsRegular():
			b.addParents(name)
			b.entries[name] = builderEntry{source: p}
		}
		return nil
	})
}

func (b *Builder) addParents(name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		b.addDir(dir)
	}
}

func (b *Builder) addDir(name string) {
	name = strings.TrimSuffix(name, "/")
	b.addParents(name)
	b.entries[name+"/"] = builderEntry{dir: true}
}

// Names returns the archive names added so far, sorted.
func (b *Builder) Names() []string {
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write writes the archive to outPath, creating its parent directory and
// replacing any existing file.
func (b *Builder) Write(outPath string) error {
	if err := b.fs.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out, err := b.fs.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create archive %q: %w", outPath, err)
	}
	if err := b.writeTo(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("write archive %q: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close archive %q: %w", outPath, err)
	}
	return nil
}

func (b *Builder) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range b.Names() {
		entry := b.entries[name]
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: deterministicTimestamp,
		}
		if entry.dir {
			header.Method = zip.Store
			header.SetMode(os.ModeDir | 0o755)
			if _, err := zw.CreateHeader(header); err != nil {
				return err
			}
			continue
		}
		header.SetMode(0o644)
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if err := copyFrom(b.fs, entry.source, fw); err != nil {
			return err
		}
	}
	return zw.Close()
}

func copyFrom(fsys afero.Fs, src string, w io.Writer) error {
	f, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy %q: %w", src, err)
	}
	return nil
}

// Create archives the whole tree below srcDir into outPath.
func Create(fsys afero.Fs, srcDir, outPath string) error {
	b := NewBuilder(fsys)
	if err := b.AddFolder(srcDir, ""); err != nil {
		return err
	}
	return b.Write(outPath)
}
