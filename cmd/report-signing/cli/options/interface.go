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
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Interface is satisfied by every option group.
type Interface interface {
	// AddFlags adds this options' flags to the cobra command.
	AddFlags(cmd *cobra.Command)
}

// fs is the filesystem every command operates on.
var fs = afero.NewOsFs()

// Fs returns the filesystem commands operate on.
func Fs() afero.Fs {
	return fs
}

// bind ties the flag name on cmd to key in v. Flags that were never
// registered are skipped.
func bind(v *viper.Viper, cmd *cobra.Command, key, name string) {
	if f := cmd.Flag(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}
