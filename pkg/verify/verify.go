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

// Package verify checks signed report packages: their archive structure
// and, given public keys, the digests and signatures in their manifest.
package verify

import (
	"context"
	"fmt"
)

// Result summarizes one package verification for display.
type Result struct {
	Package  string
	Verified bool
	Files    int
	Message  string
}

// PackageVerifier checks a single package against one source of trust.
type PackageVerifier interface {
	Verify(ctx context.Context) (Result, error)
}

// Summarize turns a content report and the error VerifyContent returned
// into a Result.
func Summarize(report *ContentReport, err error) Result {
	res := Result{}
	if report != nil {
		res.Package = report.Package
		if report.Manifest != nil {
			res.Files = len(report.Manifest.Files())
		}
	}
	switch {
	case err != nil:
		res.Message = err.Error()
	case report == nil:
		res.Message = "nothing verified"
	case !report.OK():
		res.Message = fmt.Sprintf("%d problem(s) found", len(report.Problems))
	default:
		res.Verified = true
		res.Message = fmt.Sprintf("%d signed file(s) verified", res.Files)
	}
	return res
}
