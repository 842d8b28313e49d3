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

package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigstore/report-signing/pkg/config"
	hashengines "github.com/sigstore/report-signing/pkg/hashing/engines"
	_ "github.com/sigstore/report-signing/pkg/hashing/engines/memory"
)

// KeyFlags names private key files and their shared password.
type KeyFlags struct {
	PrivateKeys []string // --private-key (repeatable)
	Password    string   // --password
}

// AddFlags implements Interface.
func (o *KeyFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.PrivateKeys, "private-key", nil,
		"Path to a PEM-encoded private key. Repeat to sign with several keys.")
	_ = cmd.MarkFlagFilename("private-key", "pem", "key")
	cmd.Flags().StringVar(&o.Password, "password", "", "Password for the key encryption, if any.")
}

// Apply replaces cfg.Keys when keys were given on the command line.
func (o *KeyFlags) Apply(cfg *config.Config) {
	if len(o.PrivateKeys) == 0 {
		return
	}
	cfg.Keys = make([]config.KeyConfig, 0, len(o.PrivateKeys))
	for _, p := range o.PrivateKeys {
		cfg.Keys = append(cfg.Keys, config.KeyConfig{Path: p, Password: o.Password})
	}
}

// GenerateOptions is the top level wrapper for the generate command.
type GenerateOptions struct {
	KeyFlags
	Variants        []string // --variants
	SignedDir       string   // --signed-dir
	FailDir         string   // --fail-dir
	Identity        string   // --identity
	IdentitySubdir  bool     // --identity-subdir
	Clean           bool     // --clean
	HashAlgorithm   string   // --hash-algorithm
	Attest          bool     // --attest
	Summary         string   // --summary
	UnknownIdentity string   // --unknown-identity
}

var _ Interface = (*GenerateOptions)(nil)

// AddFlags implements Interface.
func (o *GenerateOptions) AddFlags(cmd *cobra.Command) {
	o.KeyFlags.AddFlags(cmd)

	d := config.Default()
	cmd.Flags().StringSliceVar(&o.Variants, "variants", d.Variants,
		"Packaging variants to produce (simple, external-manifest, unzipped, unfoldered, fail).")
	cmd.Flags().StringVar(&o.SignedDir, "signed-dir", d.SignedDir, "Directory receiving signed packages.")
	cmd.Flags().StringVar(&o.FailDir, "fail-dir", d.FailDir, "Directory receiving fault fixtures.")
	cmd.Flags().StringVar(&o.Identity, "identity", "", "Signer identity recorded in every manifest entry. [required]")
	cmd.Flags().BoolVar(&o.IdentitySubdir, "identity-subdir", d.IdentitySubdir,
		"Place outputs below a directory named after the signer identity.")
	cmd.Flags().BoolVar(&o.Clean, "clean", d.Clean,
		"Remove the signed and fail output directories before generating.")
	cmd.Flags().StringVar(&o.HashAlgorithm, "hash-algorithm", d.HashAlgorithm,
		fmt.Sprintf("Digest algorithm (%s).", strings.Join(hashengines.SupportedAlgorithms(), ", ")))
	cmd.Flags().BoolVar(&o.Attest, "attest", false, "Write a Sigstore bundle attestation next to every signed package.")
	cmd.Flags().StringVar(&o.Summary, "summary", "", "Write a YAML run summary to this path.")
	_ = cmd.MarkFlagFilename("summary", "yaml", "yml")
	cmd.Flags().StringVar(&o.UnknownIdentity, "unknown-identity", d.Fault.UnknownIdentity,
		"Identity written by wrong-identity fixtures.")
}

// Bind ties the generate flags to their configuration keys.
func (o *GenerateOptions) Bind(cmd *cobra.Command) func(*viper.Viper) {
	return func(v *viper.Viper) {
		bind(v, cmd, "variants", "variants")
		bind(v, cmd, "signed-dir", "signed-dir")
		bind(v, cmd, "fail-dir", "fail-dir")
		bind(v, cmd, "identity", "identity")
		bind(v, cmd, "identity-subdir", "identity-subdir")
		bind(v, cmd, "clean", "clean")
		bind(v, cmd, "hash-algorithm", "hash-algorithm")
		bind(v, cmd, "attest", "attest")
		bind(v, cmd, "summary", "summary")
		bind(v, cmd, "fault.unknown-identity", "unknown-identity")
	}
}
