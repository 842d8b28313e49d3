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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigstore/report-signing/cmd/report-signing/cli/options"
	"github.com/sigstore/report-signing/pkg/reporterr"
	"github.com/sigstore/report-signing/pkg/verify"
)

// Validate returns the validate command.
func Validate() *cobra.Command {
	var noManifest bool

	long := `Check the shape of signed packages.

Each PACKAGE must be a readable archive with a META-INF directory holding
reports.json, plus a report folder or archive. Signatures and digests are
not checked; use "verify" for that.`

	cmd := &cobra.Command{
		Use:   "validate [OPTIONS] PACKAGE...",
		Short: "Check the structure of signed packages.",
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []verify.ValidateOption
			if noManifest {
				opts = append(opts, verify.WithoutManifest())
			}

			var errs []error
			for _, pkg := range args {
				if err := verify.ValidateArchive(options.Fs(), pkg, opts...); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", pkg, err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %s\n", pkg)
			}
			if len(errs) == 0 {
				return nil
			}
			return withExitCode(reporterr.New(reporterr.KindStructural, "cli.validate",
				fmt.Sprintf("%d of %d package(s) failed validation", len(errs), len(args)), errors.Join(errs...)))
		},
	}

	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "Accept packages without META-INF/reports.json.")
	return cmd
}
