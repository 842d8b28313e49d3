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
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigstore/report-signing/pkg/config"
	"github.com/sigstore/report-signing/pkg/logging"
)

// RootOptions define flags and options for the root report-signing cli.
type RootOptions struct {
	// ConfigFile points at a YAML, TOML or JSON configuration file.
	ConfigFile string
	// OutputFile specifies a file path to redirect output to instead of stdout.
	OutputFile string
	// LogLevel sets the minimum log level (debug, info, warn, error, silent).
	LogLevel string
	// LogFormat sets the log output format (text, json).
	LogFormat string
	// LogBackend selects the logger implementation (default, zap).
	LogBackend string
	// Timeout sets the maximum duration for command execution.
	Timeout time.Duration
}

// DefaultTimeout specifies the default timeout for commands.
const DefaultTimeout = 3 * time.Minute

var logExts = []string{"log", "txt"}

var _ Interface = (*RootOptions)(nil)

// AddFlags implements Interface.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.ConfigFile, "config", "",
		"configuration file (default ./report-signing.yaml)")
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml", "toml", "json")

	cmd.PersistentFlags().StringVar(&o.OutputFile, "output-file", "",
		"log output to a file")
	_ = cmd.MarkPersistentFlagFilename("output-file", logExts...)

	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"set the minimum log level (debug, info, warn, error, silent)")

	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"set the log output format (text, json)")

	cmd.PersistentFlags().StringVar(&o.LogBackend, "log-backend", "default",
		"set the logger implementation (default, zap)")

	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "t", DefaultTimeout,
		"timeout for commands")
}

// BindFlags binds the logging flags of cmd into v.
func (o *RootOptions) BindFlags(cmd *cobra.Command, v *viper.Viper) {
	bind(v, cmd, "log.level", "log-level")
	bind(v, cmd, "log.format", "log-format")
	bind(v, cmd, "log.backend", "log-backend")
}

// LoadConfig builds a viper instance, lets bindFn attach command flags and
// loads the resulting configuration.
func (o *RootOptions) LoadConfig(cmd *cobra.Command, bindFn func(*viper.Viper)) (*config.Config, error) {
	v := config.NewViper()
	o.BindFlags(cmd, v)
	if bindFn != nil {
		bindFn(v)
	}
	return config.Load(fs, v, o.ConfigFile)
}

// NewLogger creates a logger from the loaded log settings.
func NewLogger(cfg config.LogConfig, out io.Writer) (logging.Logger, error) {
	return logging.New(cfg.Backend,
		logging.ParseLevel(cfg.Level),
		logging.ParseFormat(cfg.Format),
		out)
}
