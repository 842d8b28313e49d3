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
	"github.com/spf13/cobra"
)

// VerifyOptions is the top level wrapper for the verify command.
type VerifyOptions struct {
	PublicKeys  []string // --public-key (required, repeatable)
	Identity    string   // --identity
	Attestation bool     // --attestation
}

var _ Interface = (*VerifyOptions)(nil)

// AddFlags implements Interface.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.PublicKeys, "public-key", nil,
		"Path to a PEM-encoded public key. Any listed key may satisfy a signature. [required]")
	_ = cmd.MarkFlagRequired("public-key")
	_ = cmd.MarkFlagFilename("public-key", "pem", "pub")
	cmd.Flags().StringVar(&o.Identity, "identity", "", "Expected signer identity. Empty accepts any.")
	cmd.Flags().BoolVar(&o.Attestation, "attestation", false,
		"Also verify the <package>.sigstore.json attestation with the first public key.")
}

// FaultOptions is the top level wrapper for the fault command.
type FaultOptions struct {
	Kinds           []string // --kind
	OutputDir       string   // --output-dir
	UnknownIdentity string   // --unknown-identity
}

var _ Interface = (*FaultOptions)(nil)

// AddFlags implements Interface.
func (o *FaultOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.Kinds, "kind", nil,
		"Fault kinds to inject (missing-signature, no-signature, remove-manifest, wrong-identity). Default all.")
	cmd.Flags().StringVar(&o.OutputDir, "output-dir", "fail_reports", "Directory receiving the fixtures.")
	cmd.Flags().StringVar(&o.UnknownIdentity, "unknown-identity", "", "Identity written by wrong-identity fixtures.")
}

// KeygenOptions is the top level wrapper for the keygen command.
type KeygenOptions struct {
	OutputDir string // --output-dir
	Name      string // --name
	Password  string // --password
}

var _ Interface = (*KeygenOptions)(nil)

// AddFlags implements Interface.
func (o *KeygenOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.OutputDir, "output-dir", ".", "Directory receiving the key pair.")
	cmd.Flags().StringVar(&o.Name, "name", "report-signing", "Base name of the <name>.key and <name>.pub files.")
	cmd.Flags().StringVar(&o.Password, "password", "", "Encrypt the private key with this password.")
}
