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
	"github.com/spf13/viper"

	"github.com/sigstore/report-signing/cmd/report-signing/cli/options"
	"github.com/sigstore/report-signing/pkg/fault"
	"github.com/sigstore/report-signing/pkg/reporterr"
)

// Fault returns the fault command.
func Fault() *cobra.Command {
	o := &options.FaultOptions{}

	long := `Derive fault fixtures from already signed packages.

Each PACKAGE is copied once per --kind (all kinds by default) into
--output-dir with its manifest corrupted. The fixture keeps the layout of
its source and is named <prefix>_<package file name>.`

	cmd := &cobra.Command{
		Use:   "fault [OPTIONS] PACKAGE...",
		Short: "Generate fault fixtures from signed packages.",
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.LoadConfig(cmd, func(v *viper.Viper) {
				if f := cmd.Flag("unknown-identity"); f != nil && f.Changed {
					_ = v.BindPFlag("fault.unknown-identity", f)
				}
			})
			if err != nil {
				return withExitCode(err)
			}
			logger, err := options.NewLogger(cfg.Log, cmd.OutOrStdout())
			if err != nil {
				return withExitCode(reporterr.New(reporterr.KindConfiguration, "cli.fault", "invalid logger", err))
			}

			kinds := fault.AllKinds
			if len(o.Kinds) > 0 {
				kinds = make([]fault.Kind, 0, len(o.Kinds))
				for _, name := range o.Kinds {
					k, err := fault.ParseKind(name)
					if err != nil {
						return withExitCode(reporterr.New(reporterr.KindConfiguration, "cli.fault", "invalid kind", err))
					}
					kinds = append(kinds, k)
				}
			}

			injector := fault.NewInjector(options.Fs(), fault.Options{
				UnknownIdentity: cfg.Fault.UnknownIdentity,
				Logger:          logger,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			for _, pkg := range args {
				for _, k := range kinds {
					out, err := injector.Inject(ctx, pkg, k, o.OutputDir)
					if err != nil {
						return withExitCode(err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", k, out)
				}
			}
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
