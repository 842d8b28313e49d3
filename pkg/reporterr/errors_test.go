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

package reporterr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind and message",
			err:  New(KindSigning, "", "no signatures", nil),
			want: "SigningError: no signatures",
		},
		{
			name: "with op",
			err:  New(KindLayout, "packaging.unzipped", "no reports directory found", nil),
			want: "packaging.unzipped: LayoutError: no reports directory found",
		},
		{
			name: "with op and path",
			err:  NewWithPath(KindStructural, "verify.archive", "/out/a.zip", "missing META-INF/ entry", nil),
			want: "verify.archive: StructuralError: missing META-INF/ entry (path: /out/a.zip)",
		},
		{
			name: "with cause",
			err:  IO("manifest.build", "/r/doc.xml", fs.ErrNotExist),
			want: "manifest.build: IOError: filesystem operation failed (path: /r/doc.xml): file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind_ThroughWrapping(t *testing.T) {
	base := NewWithPath(KindFaultPrecondition, "fault.apply", "reports.json", "no signatures to remove", nil)
	wrapped := fmt.Errorf("inject wrong-identity: %w", base)

	if !IsKind(wrapped, KindFaultPrecondition) {
		t.Error("IsKind() = false for wrapped error")
	}
	if IsKind(wrapped, KindIO) {
		t.Error("IsKind() = true for different kind")
	}
	if IsKind(errors.New("plain"), KindIO) {
		t.Error("IsKind() = true for plain error")
	}
	if IsKind(nil, KindIO) {
		t.Error("IsKind(nil) = true")
	}
	if KindOf(wrapped) != KindFaultPrecondition {
		t.Errorf("KindOf() = %s", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("KindOf(plain) should be unknown")
	}
}

func TestUnwrap(t *testing.T) {
	err := IO("archive.extract", "a.zip", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is() did not reach the cause")
	}
}

func TestKind_String(t *testing.T) {
	kinds := map[Kind]string{
		KindUnknown:           "UnknownError",
		KindIO:                "IOError",
		KindLayout:            "LayoutError",
		KindSigning:           "SigningError",
		KindStructural:        "StructuralError",
		KindFaultPrecondition: "FaultPreconditionError",
		KindConfiguration:     "ConfigurationError",
		KindVerification:      "VerificationError",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
