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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigstore/report-signing/cmd/report-signing/cli/options"
	"github.com/sigstore/report-signing/pkg/attest"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signing"
	keyverify "github.com/sigstore/report-signing/pkg/verify/key"
)

// Verify returns the verify command.
func Verify() *cobra.Command {
	o := &options.VerifyOptions{}

	long := `Verify signed packages using public keys.

Verifies the structure of every PACKAGE, recomputes the digest of each
report file and checks it against META-INF/reports.json, then verifies every
signature with the keys given via --public-key. A signature is accepted when
any of the keys verifies it. With --identity, every entry must also carry
that identity.

Fault fixtures are expected to fail this command.`

	cmd := &cobra.Command{
		Use:   "verify [OPTIONS] PACKAGE...",
		Short: "Verify signed packages using public keys.",
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := options.Fs()

			cfg, err := ro.LoadConfig(cmd, nil)
			if err != nil {
				return withExitCode(err)
			}
			logger, err := options.NewLogger(cfg.Log, cmd.OutOrStdout())
			if err != nil {
				return withExitCode(reporterr.New(reporterr.KindConfiguration, "cli.verify", "invalid logger", err))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			var failed error
			for _, pkg := range args {
				verifier, err := keyverify.NewKeyVerifier(fsys, keyverify.KeyVerifierOptions{
					PackagePath:    pkg,
					PublicKeyPaths: o.PublicKeys,
					Identity:       o.Identity,
					Logger:         logger,
				})
				if err != nil {
					return withExitCode(reporterr.New(reporterr.KindConfiguration, "cli.verify", "invalid arguments", err))
				}

				status, err := verifier.Verify(ctx)
				if err == nil && o.Attestation {
					err = verifyAttestation(ctx, pkg, o.PublicKeys[0])
				}
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", pkg, err)
					if failed == nil {
						failed = err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %s: %s\n", pkg, status.Message)
			}
			return withExitCode(failed)
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func verifyAttestation(ctx context.Context, pkg, keyPath string) error {
	pub, err := signing.LoadPublicKeyFromPEM(options.Fs(), keyPath)
	if err != nil {
		return reporterr.NewWithPath(reporterr.KindConfiguration, "cli.verify", keyPath, "failed to load public key", err)
	}
	_, err = attest.Verify(ctx, options.Fs(), pkg, pub)
	return err
}
