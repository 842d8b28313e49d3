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

package hashengines

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sigstore/report-signing/pkg/hashing/digests"
)

// DefaultAlgorithm digests report files when no algorithm is configured.
const DefaultAlgorithm = "sha256"

// Factory returns a fresh engine.
type Factory func() (StreamingHashEngine, error)

// Registry maps algorithm names to engine factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under name. Names are unique, non-empty and free of
// the digest prefix separator.
func (r *Registry) Register(name string, factory Factory) error {
	switch {
	case name == "":
		return errors.New("algorithm name cannot be empty")
	case strings.Contains(name, digests.PrefixSeparator):
		return fmt.Errorf("algorithm name %q must not contain %q", name, digests.PrefixSeparator)
	case factory == nil:
		return fmt.Errorf("algorithm %q: factory cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("hash algorithm %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Unregister removes name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; !ok {
		return fmt.Errorf("hash algorithm %q not registered", name)
	}
	delete(r.factories, name)
	return nil
}

// Create returns a fresh engine for name.
func (r *Registry) Create(name string) (StreamingHashEngine, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm %q (supported: %s)",
			name, strings.Join(r.Names(), ", "))
	}

	engine, err := factory()
	if err != nil {
		return nil, fmt.Errorf("creating %s engine: %w", name, err)
	}
	return engine, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Sum digests data in one call.
func (r *Registry) Sum(name string, data []byte) (digests.Digest, error) {
	engine, err := r.Create(name)
	if err != nil {
		return digests.Digest{}, err
	}
	engine.Update(data)
	return engine.Compute()
}

// Default holds the engines registered by the memory package.
var Default = NewRegistry()

// MustRegister registers on Default and panics on error. Engine packages
// call it from init.
func MustRegister(name string, factory Factory) {
	if err := Default.Register(name, factory); err != nil {
		panic(err)
	}
}

func Create(name string) (StreamingHashEngine, error) { return Default.Create(name) }

// SupportedAlgorithms lists the names registered on Default.
func SupportedAlgorithms() []string { return Default.Names() }

func IsSupported(name string) bool { return Default.Has(name) }

func Sum(name string, data []byte) (digests.Digest, error) { return Default.Sum(name, data) }
