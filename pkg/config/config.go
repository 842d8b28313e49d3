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

// Package config loads report-signing settings from flags, environment
// variables and an optional configuration file, and holds the key file
// primitives shared by signing and verification.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/utils"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REPORT_SIGNING"

// DefaultUnknownIdentity is recorded as aid by wrong-identity fixtures.
const DefaultUnknownIdentity = "unknown-identity"

// Config represents the complete report-signing configuration.
type Config struct {
	Reports        []string    `mapstructure:"reports" yaml:"reports"`
	Variants       []string    `mapstructure:"variants" yaml:"variants"`
	SignedDir      string      `mapstructure:"signed-dir" yaml:"signed-dir"`
	FailDir        string      `mapstructure:"fail-dir" yaml:"fail-dir"`
	Identity       string      `mapstructure:"identity" yaml:"identity"`
	IdentitySubdir bool        `mapstructure:"identity-subdir" yaml:"identity-subdir"`
	Clean          bool        `mapstructure:"clean" yaml:"clean"`
	Keys           []KeyConfig `mapstructure:"keys" yaml:"keys"`
	HashAlgorithm  string      `mapstructure:"hash-algorithm" yaml:"hash-algorithm"`
	Attest         bool        `mapstructure:"attest" yaml:"attest"`
	Summary        string      `mapstructure:"summary" yaml:"summary,omitempty"`
	Fault          FaultConfig `mapstructure:"fault" yaml:"fault"`
	Log            LogConfig   `mapstructure:"log" yaml:"log"`
}

// FaultConfig configures negative fixture generation.
type FaultConfig struct {
	UnknownIdentity string `mapstructure:"unknown-identity" yaml:"unknown-identity"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Format  string `mapstructure:"format" yaml:"format"`
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Variants:       []string{"simple", "external-manifest", "unzipped", "unfoldered", "fail"},
		SignedDir:      "signed_reports",
		FailDir:        "fail_reports",
		IdentitySubdir: true,
		HashAlgorithm:  "sha256",
		Fault: FaultConfig{
			UnknownIdentity: DefaultUnknownIdentity,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "text",
			Backend: "default",
		},
	}
}

// NewViper returns a viper instance with defaults and environment binding
// applied. Callers may bind flags before passing it to Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration.
//
// Configuration priority (highest to lowest):
//  1. Flags bound to v
//  2. Environment variables (REPORT_SIGNING_*)
//  3. Configuration file (configPath, or report-signing.yaml in the
//     working directory)
//  4. Default values
//
// The file is read from fsys. A nil v is replaced by NewViper().
func Load(fsys afero.Fs, v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	v.SetFs(fsys)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("report-signing")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, reporterr.NewWithPath(reporterr.KindConfiguration, "config.Load", configPath,
				"failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, reporterr.New(reporterr.KindConfiguration, "config.Load", "failed to unmarshal config", err)
	}
	cfg.Variants = splitList(cfg.Variants)
	cfg.Reports = splitList(cfg.Reports)

	return cfg, nil
}

// splitList expands comma separated values coming from environment
// variables, which viper hands over as a single element.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// setDefaults sets default values in Viper.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("reports", defaults.Reports)
	v.SetDefault("variants", defaults.Variants)
	v.SetDefault("signed-dir", defaults.SignedDir)
	v.SetDefault("fail-dir", defaults.FailDir)
	v.SetDefault("identity", defaults.Identity)
	v.SetDefault("identity-subdir", defaults.IdentitySubdir)
	v.SetDefault("clean", defaults.Clean)
	v.SetDefault("hash-algorithm", defaults.HashAlgorithm)
	v.SetDefault("attest", defaults.Attest)
	v.SetDefault("summary", defaults.Summary)

	v.SetDefault("fault.unknown-identity", defaults.Fault.UnknownIdentity)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.backend", defaults.Log.Backend)
}

// Validate checks the configuration needed by the generate command.
func (c *Config) Validate(fsys afero.Fs) error {
	const op = "config.Validate"
	fail := func(err error) error {
		return reporterr.New(reporterr.KindConfiguration, op, "invalid configuration", err)
	}

	if len(c.Reports) == 0 {
		return fail(fmt.Errorf("at least one report is required"))
	}
	if err := utils.ValidateMultiple(fsys, "reports", c.Reports, utils.PathTypeAny); err != nil {
		return fail(err)
	}
	if len(c.Variants) == 0 {
		return fail(fmt.Errorf("at least one variant is required"))
	}
	if c.SignedDir == "" {
		return fail(fmt.Errorf("signed-dir is required"))
	}
	if c.FailDir == "" {
		return fail(fmt.Errorf("fail-dir is required"))
	}
	if c.Identity == "" {
		return fail(fmt.Errorf("identity is required"))
	}
	if len(c.Keys) == 0 {
		return fail(fmt.Errorf("at least one key is required"))
	}
	for i, k := range c.Keys {
		if err := utils.ValidateFileExists(fsys, fmt.Sprintf("keys[%d].path", i), k.Path); err != nil {
			return fail(err)
		}
	}
	if c.Fault.UnknownIdentity == "" {
		return fail(fmt.Errorf("fault.unknown-identity must not be empty"))
	}
	if c.Fault.UnknownIdentity == c.Identity {
		return fail(fmt.Errorf("fault.unknown-identity must differ from identity"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "silent": true}
	if !validLevels[c.Log.Level] {
		return fail(fmt.Errorf("invalid log level: %s", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fail(fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format))
	}
	if c.Log.Backend != "default" && c.Log.Backend != "zap" {
		return fail(fmt.Errorf("invalid log backend: %s (must be default or zap)", c.Log.Backend))
	}

	return nil
}
