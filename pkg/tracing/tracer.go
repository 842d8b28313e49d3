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

// Package tracing records spans around report generation, packaging, fault
// injection and verification. The default build records nothing; a binary
// built with -tags=otel exports spans over OTLP/HTTP.
package tracing

import (
	"context"
	"sync/atomic"
)

// Span is one traced operation. End must be called exactly once.
type Span interface {
	SetAttribute(key string, value interface{})
	// RecordError marks the span as failed with err.
	RecordError(err error)
	End()
}

// Tracer starts spans. The returned context carries the new span.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

type holder struct{ tracer Tracer }

var current atomic.Pointer[holder]

func init() {
	SetTracer(nil)
}

// SetTracer installs t as the process-wide tracer. nil restores the no-op
// tracer.
func SetTracer(t Tracer) {
	if t == nil {
		t = noopTracer{}
	}
	current.Store(&holder{tracer: t})
}

func active() Tracer {
	return current.Load().tracer
}

// Start starts a span on the installed tracer.
func Start(ctx context.Context, name string) (context.Context, Span) {
	return active().Start(ctx, name)
}

// Enabled reports whether a recording tracer is installed.
func Enabled() bool {
	_, noop := active().(noopTracer)
	return !noop
}

// Run wraps fn in a span called name carrying attrs. A non-nil error from
// fn is recorded on the span and returned unchanged. With no recording
// tracer installed fn is called directly.
func Run(ctx context.Context, name string, attrs map[string]interface{}, fn func(context.Context) error) error {
	t := active()
	if _, noop := t.(noopTracer); noop {
		return fn(ctx)
	}

	ctx, span := t.Start(ctx, name)
	defer span.End()
	for k, v := range attrs {
		span.SetAttribute(k, v)
	}
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
