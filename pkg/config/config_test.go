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

package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigstore/report-signing/pkg/reporterr"
)

const sampleConfig = `reports:
  - /data/annualReport.zip
variants: [simple, unzipped]
signed-dir: /out/signed
fail-dir: /out/fail
identity: EKtQ1lymrnrh3qv5S18PBzQ7ukHGFJ7EXkH7B22XEMIL
keys:
  - path: /keys/one.key
  - path: /keys/two.key
    password: secret
hash-algorithm: blake3
fault:
  unknown-identity: EUnknownPrefix
log:
  level: debug
  format: json
`

func newConfigFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for _, p := range []string{"/data/annualReport.zip", "/keys/one.key", "/keys/two.key"} {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("x"), 0o600))
	}
	require.NoError(t, afero.WriteFile(fsys, "/etc/report-signing.yaml", []byte(sampleConfig), 0o644))
	return fsys
}

func TestLoad_File(t *testing.T) {
	fsys := newConfigFs(t)

	cfg, err := Load(fsys, nil, "/etc/report-signing.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/annualReport.zip"}, cfg.Reports)
	assert.Equal(t, []string{"simple", "unzipped"}, cfg.Variants)
	assert.Equal(t, "/out/signed", cfg.SignedDir)
	assert.Equal(t, "/out/fail", cfg.FailDir)
	assert.True(t, cfg.IdentitySubdir)
	require.Len(t, cfg.Keys, 2)
	assert.Equal(t, "secret", cfg.Keys[1].Password)
	assert.Equal(t, "blake3", cfg.HashAlgorithm)
	assert.Equal(t, "EUnknownPrefix", cfg.Fault.UnknownIdentity)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "default", cfg.Log.Backend)

	require.NoError(t, cfg.Validate(fsys))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), nil, "")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Variants, cfg.Variants)
	assert.Equal(t, def.SignedDir, cfg.SignedDir)
	assert.Equal(t, "sha256", cfg.HashAlgorithm)
	assert.Equal(t, DefaultUnknownIdentity, cfg.Fault.UnknownIdentity)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Clean)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("REPORT_SIGNING_IDENTITY", "EFromEnv")
	t.Setenv("REPORT_SIGNING_VARIANTS", "simple, fail")
	t.Setenv("REPORT_SIGNING_FAULT_UNKNOWN_IDENTITY", "EOther")
	t.Setenv("REPORT_SIGNING_CLEAN", "true")

	cfg, err := Load(newConfigFs(t), nil, "/etc/report-signing.yaml")
	require.NoError(t, err)

	assert.Equal(t, "EFromEnv", cfg.Identity)
	assert.Equal(t, []string{"simple", "fail"}, cfg.Variants)
	assert.Equal(t, "EOther", cfg.Fault.UnknownIdentity)
	assert.True(t, cfg.Clean)
}

func TestLoad_BadFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bad.yaml", []byte("reports: [unterminated"), 0o644))

	_, err := Load(fsys, nil, "/bad.yaml")
	require.Error(t, err)
	assert.True(t, reporterr.IsKind(err, reporterr.KindConfiguration))
}

func TestValidate(t *testing.T) {
	fsys := newConfigFs(t)
	valid := func() *Config {
		cfg, err := Load(fsys, nil, "/etc/report-signing.yaml")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no reports", func(c *Config) { c.Reports = nil }},
		{"missing report", func(c *Config) { c.Reports = []string{"/data/missing.zip"} }},
		{"no variants", func(c *Config) { c.Variants = nil }},
		{"no signed dir", func(c *Config) { c.SignedDir = "" }},
		{"no fail dir", func(c *Config) { c.FailDir = "" }},
		{"no identity", func(c *Config) { c.Identity = "" }},
		{"no keys", func(c *Config) { c.Keys = nil }},
		{"missing key", func(c *Config) { c.Keys[0].Path = "/keys/none.key" }},
		{"empty unknown identity", func(c *Config) { c.Fault.UnknownIdentity = "" }},
		{"unknown identity equals identity", func(c *Config) { c.Fault.UnknownIdentity = c.Identity }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad backend", func(c *Config) { c.Log.Backend = "syslog" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate(fsys)
			require.Error(t, err)
			assert.True(t, reporterr.IsKind(err, reporterr.KindConfiguration))
		})
	}
}
