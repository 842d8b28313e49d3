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
	"github.com/sigstore/report-signing/pkg/reporterr"
)

// Exit codes by error kind. Anything unclassified exits with 1.
const (
	ExitFailure           = 1
	ExitConfiguration     = 2
	ExitIO                = 3
	ExitLayout            = 4
	ExitStructural        = 5
	ExitVerification      = 6
	ExitSigning           = 7
	ExitFaultPrecondition = 8
)

// ExitError carries the exit status chosen for a failed command.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCodeFor maps err to an exit status.
func ExitCodeFor(err error) int {
	switch reporterr.KindOf(err) {
	case reporterr.KindConfiguration:
		return ExitConfiguration
	case reporterr.KindIO:
		return ExitIO
	case reporterr.KindLayout:
		return ExitLayout
	case reporterr.KindStructural:
		return ExitStructural
	case reporterr.KindVerification:
		return ExitVerification
	case reporterr.KindSigning:
		return ExitSigning
	case reporterr.KindFaultPrecondition:
		return ExitFaultPrecondition
	default:
		return ExitFailure
	}
}

func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Err: err, Code: ExitCodeFor(err)}
}
