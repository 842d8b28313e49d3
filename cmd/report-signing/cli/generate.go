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
	"github.com/sigstore/report-signing/pkg/generate"
	"github.com/sigstore/report-signing/pkg/packaging"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/signing/key"
	"github.com/sigstore/report-signing/pkg/utils"
)

// Generate returns the generate command.
func Generate() *cobra.Command {
	o := &options.GenerateOptions{}

	long := `Sign report packages and generate fault fixtures.

Every REPORT (a report archive, or a directory whose .zip files are all
taken) is signed once per requested variant into --signed-dir. When the
"fail" variant is requested, each signed package is then corrupted once per
fault kind into --fail-dir.

Signing keys come from --private-key or the keys list of the configuration
file. Every key signs every file digest; --identity is recorded next to the
signatures.`

	cmd := &cobra.Command{
		Use:   "generate [OPTIONS] REPORT...",
		Short: "Sign reports and generate fault fixtures.",
		Long:  long,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := options.Fs()

			cfg, err := ro.LoadConfig(cmd, o.Bind(cmd))
			if err != nil {
				return withExitCode(err)
			}
			if len(args) > 0 {
				cfg.Reports = args
			}
			o.KeyFlags.Apply(cfg)
			if err := cfg.Validate(fsys); err != nil {
				return withExitCode(err)
			}

			logger, err := options.NewLogger(cfg.Log, cmd.OutOrStdout())
			if err != nil {
				return withExitCode(reporterr.New(reporterr.KindConfiguration, "cli.generate", "invalid logger", err))
			}
			if s, ok := logger.(interface{ Sync() error }); ok {
				defer func() { _ = s.Sync() }()
			}

			for i, k := range cfg.Keys {
				logger.Debug("Key %d: %s (password: %q)", i, k.Path, utils.MaskToken(k.Password))
			}

			variants, err := packaging.ParseVariants(cfg.Variants)
			if err != nil {
				return withExitCode(reporterr.New(reporterr.KindConfiguration, "cli.generate", "invalid variants", err))
			}

			signer, err := key.NewKeySigner(fsys, key.KeySignerConfig{Keys: cfg.Keys, Identity: cfg.Identity})
			if err != nil {
				return withExitCode(err)
			}

			var attestor *attest.Attestor
			if cfg.Attest {
				if attestor, err = attest.NewAttestor(fsys, signer.Keypairs()[0], logger); err != nil {
					return withExitCode(err)
				}
			}

			g, err := generate.New(fsys, generate.Options{
				Signer:          signer,
				HashAlgorithm:   cfg.HashAlgorithm,
				IdentitySubdir:  cfg.IdentitySubdir,
				UnknownIdentity: cfg.Fault.UnknownIdentity,
				Attestor:        attestor,
				Logger:          logger,
			})
			if err != nil {
				return withExitCode(err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			result, err := g.Run(ctx, generate.Request{
				Reports:   cfg.Reports,
				Variants:  variants,
				SignedDir: cfg.SignedDir,
				FailDir:   cfg.FailDir,
				Clean:     cfg.Clean,
			})
			if err != nil {
				return withExitCode(err)
			}

			if cfg.Summary != "" {
				if err := generate.WriteSummary(fsys, cfg.Summary, result); err != nil {
					return withExitCode(reporterr.IO("cli.generate", cfg.Summary, err))
				}
				logger.Debug("Summary written to %s", cfg.Summary)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed %d package(s), generated %d fixture(s)\n",
				len(result.SignedPackages()), len(result.Fixtures))
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
