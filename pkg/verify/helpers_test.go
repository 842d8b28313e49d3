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

package verify

import (
	"errors"

	"github.com/sigstore/report-signing/pkg/reporterr"
)

// asReportErr unwraps to the innermost *reporterr.Error in err's chain.
func asReportErr(err error, target **reporterr.Error) bool {
	found := false
	for err != nil {
		var rerr *reporterr.Error
		if !errors.As(err, &rerr) {
			break
		}
		*target = rerr
		found = true
		err = rerr.Cause
	}
	return found
}
