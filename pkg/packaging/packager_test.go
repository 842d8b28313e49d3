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
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigstore/report-signing/pkg/archive"
	"github.com/sigstore/report-signing/pkg/manifest"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

type fakeSigner struct{}

func (fakeSigner) Sign(message []byte) ([]string, error) {
	return []string{"sig-" + string(message)[:8]}, nil
}

type fixture struct {
	fs        afero.Fs
	source    string
	extracted string
	staging   string
	packager  *Packager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range map[string]string{
		"/src/annualReport/META-INF/reportPackage.json": `{"documentInfo":{}}`,
		"/src/annualReport/reports/doc1.xhtml":          "<html>1</html>",
		"/src/annualReport/reports/doc2.xhtml":          "<html>2</html>",
	} {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	require.NoError(t, archive.Create(fsys, "/src", "/in/annualReport.zip"))
	require.NoError(t, archive.Extract(fsys, "/in/annualReport.zip", "/work/extracted"))
	require.NoError(t, fsys.MkdirAll("/work/staging", 0o755))

	return &fixture{
		fs:        fsys,
		source:    "/in/annualReport.zip",
		extracted: "/work/extracted",
		staging:   "/work/staging",
		packager:  NewPackager(fsys, manifest.BuildOptions{Signer: fakeSigner{}, Identity: "EAid"}),
	}
}

func (f *fixture) request(v Variant) Request {
	return Request{
		Variant:   v,
		Source:    f.source,
		Staging:   f.staging,
		Extracted: f.extracted,
		Dest:      "/out/" + SignedName(v, f.source),
	}
}

func (f *fixture) names(t *testing.T, path string) []string {
	t.Helper()
	entries, err := archive.Entries(f.fs, path)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func (f *fixture) manifestIn(t *testing.T, path, entry string) *manifest.Manifest {
	t.Helper()
	r, err := archive.Open(f.fs, path)
	require.NoError(t, err)
	defer r.Close()
	data, err := r.ReadFile(entry)
	require.NoError(t, err)
	m, err := manifest.Unmarshal(data)
	require.NoError(t, err)
	return m
}

func TestPackage_Simple(t *testing.T) {
	f := newFixture(t)

	out, err := f.packager.Package(context.Background(), f.request(Simple))
	require.NoError(t, err)
	assert.Equal(t, "/out/annualReport_signed.zip", out)

	assert.Equal(t, []string{"META-INF/", "META-INF/reports.json", "annualReport.zip"}, f.names(t, out))

	m := f.manifestIn(t, out, "META-INF/reports.json")
	assert.Equal(t, []string{"annualReport.zip"}, m.Files())
	assert.Equal(t, "EAid", m.Signatures()[0].AID)
}

func TestPackage_ExternalManifest(t *testing.T) {
	f := newFixture(t)

	out, err := f.packager.Package(context.Background(), f.request(ExternalManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"META-INF/", "META-INF/reports.json", "annualReport.zip"}, f.names(t, out))
	m := f.manifestIn(t, out, "META-INF/reports.json")
	assert.Equal(t, []string{"reports/doc1.xhtml", "reports/doc2.xhtml"}, m.Files())

	// The original archive is embedded unmodified.
	original, err := afero.ReadFile(f.fs, f.source)
	require.NoError(t, err)
	r, err := archive.Open(f.fs, out)
	require.NoError(t, err)
	defer r.Close()
	embedded, err := r.ReadFile("annualReport.zip")
	require.NoError(t, err)
	assert.Equal(t, original, embedded)
}

func TestPackage_Unzipped(t *testing.T) {
	f := newFixture(t)

	out, err := f.packager.Package(context.Background(), f.request(Unzipped))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"annualReport/",
		"annualReport/META-INF/",
		"annualReport/META-INF/reportPackage.json",
		"annualReport/META-INF/reports.json",
		"annualReport/reports/",
		"annualReport/reports/doc1.xhtml",
		"annualReport/reports/doc2.xhtml",
	}, f.names(t, out))
	m := f.manifestIn(t, out, "annualReport/META-INF/reports.json")
	assert.Equal(t, []string{"reports/doc1.xhtml", "reports/doc2.xhtml"}, m.Files())
}

func TestPackage_Unfoldered(t *testing.T) {
	f := newFixture(t)

	out, err := f.packager.Package(context.Background(), f.request(Unfoldered))
	require.NoError(t, err)

	names := f.names(t, out)
	assert.Contains(t, names, "META-INF/reports.json")
	assert.Contains(t, names, "reports/doc1.xhtml")
	for _, n := range names {
		assert.False(t, strings.HasPrefix(n, "annualReport/"), "unexpected folder level in %q", n)
	}
}

func TestPackage_UnfolderedFlattensEveryTopLevelDirectory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, afero.WriteFile(f.fs, "/work/extracted/taxonomy/entry.xsd", []byte("<xsd/>"), 0o644))
	require.NoError(t, afero.WriteFile(f.fs, "/work/extracted/readme.txt", []byte("loose"), 0o644))

	out, err := f.packager.Package(context.Background(), f.request(Unfoldered))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"META-INF/",
		"META-INF/reportPackage.json",
		"META-INF/reports.json",
		"entry.xsd",
		"reports/",
		"reports/doc1.xhtml",
		"reports/doc2.xhtml",
	}, f.names(t, out))
	m := f.manifestIn(t, out, "META-INF/reports.json")
	assert.Equal(t, []string{"reports/doc1.xhtml", "reports/doc2.xhtml"}, m.Files())
}

func TestPackage_ReusesPrebuiltManifest(t *testing.T) {
	f := newFixture(t)
	prebuilt := manifest.New([]manifest.Signature{{File: "reports/x", Digest: "sha256-00", AID: "A", Sigs: []string{"s"}}})

	req := f.request(Unzipped)
	req.Manifest = prebuilt
	out, err := f.packager.Package(context.Background(), req)
	require.NoError(t, err)

	m := f.manifestIn(t, out, "annualReport/META-INF/reports.json")
	assert.Equal(t, []string{"reports/x"}, m.Files())
}

func TestPackage_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.packager.Package(context.Background(), f.request(Fail))
	assert.True(t, reporterr.IsKind(err, reporterr.KindConfiguration), "fail variant: %v", err)

	req := f.request(Simple)
	req.Staging = ""
	_, err = f.packager.Package(context.Background(), req)
	assert.True(t, reporterr.IsKind(err, reporterr.KindConfiguration), "missing staging: %v", err)

	req = f.request(Unzipped)
	req.Extracted = "/does/not/exist"
	_, err = f.packager.Package(context.Background(), req)
	assert.True(t, reporterr.IsKind(err, reporterr.KindIO), "missing extracted dir: %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.packager.Package(ctx, f.request(Simple))
	assert.ErrorIs(t, err, context.Canceled)
}
