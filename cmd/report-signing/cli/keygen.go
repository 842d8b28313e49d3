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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigstore/report-signing/cmd/report-signing/cli/options"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signing"
)

// Keygen returns the keygen command.
func Keygen() *cobra.Command {
	o := &options.KeygenOptions{}

	cmd := &cobra.Command{
		Use:   "keygen [OPTIONS]",
		Short: "Generate an ECDSA P-256 signing key pair.",
		Long: `Generate an ECDSA P-256 signing key pair.

Writes <name>.key (PKCS#8 PEM, or sigstore encrypted PEM with --password)
and <name>.pub (PKIX PEM) into --output-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			priv, err := signing.GenerateKeyPair()
			if err != nil {
				return withExitCode(reporterr.New(reporterr.KindSigning, "cli.keygen", "key generation failed", err))
			}
			files, err := signing.WriteKeyPair(options.Fs(), o.OutputDir, o.Name, priv, o.Password)
			if err != nil {
				return withExitCode(reporterr.IO("cli.keygen", o.OutputDir, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Private key: %s\nPublic key:  %s\n", files.PrivateKey, files.PublicKey)
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
