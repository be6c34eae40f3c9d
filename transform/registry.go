// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/stacklok/remap-core/tree"
)

// Func is a pure transformer: one value in, one value out. Implementations
// must accept Null and must not panic on any input kind.
type Func func(tree.Value) tree.Value

var (
	// ErrDuplicateName indicates a registration under a name that is
	// already bound.
	ErrDuplicateName = errors.New("transformer name already registered")

	// ErrNotFound indicates a lookup of an unregistered name.
	ErrNotFound = errors.New("transformer not found")

	// ErrInvalidName indicates a name that does not satisfy the registry
	// naming rules.
	ErrInvalidName = errors.New("invalid transformer name")

	// ErrNilFunc indicates a registration without a function.
	ErrNilFunc = errors.New("transformer function is nil")
)

// MaxNameLength bounds registered names.
const MaxNameLength = 64

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateName checks that a registry name is non-empty, within length
// limits, and matches the allowed pattern: lower-case alphanumerics,
// underscores and hyphens, starting with a letter.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds maximum length of %d characters", ErrInvalidName, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidName, name, namePattern)
	}
	return nil
}

// Registry maps names to transformers. The zero value is not usable; create
// with NewRegistry.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register binds fn under name. Binding an already-registered name fails
// with ErrDuplicateName; registration is for setup time, not the hot path.
func (r *Registry) Register(name string, fn Func) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilFunc, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fns[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.fns[name] = fn
	return nil
}

// Lookup returns the transformer bound to name, or ErrNotFound.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.fns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fns[name]
	return ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MultiFunc derives one value from several. Implementations must tolerate
// Null arguments and must not panic.
type MultiFunc func(args []tree.Value) tree.Value

// Function is a named multi-argument function with arity bounds, used by
// rules that combine several source fields into one target field.
type Function struct {
	// Name is the registry key.
	Name string
	// MinArgs is the minimum argument count.
	MinArgs int
	// MaxArgs is the maximum argument count; -1 means unbounded.
	MaxArgs int
	// Fn is the implementation.
	Fn MultiFunc
}

// AcceptsArity reports whether n arguments satisfy the declared bounds.
func (f Function) AcceptsArity(n int) bool {
	if n < f.MinArgs {
		return false
	}
	return f.MaxArgs < 0 || n <= f.MaxArgs
}

// FuncRegistry maps names to multi-argument functions. Create with
// NewFuncRegistry.
type FuncRegistry struct {
	mu  sync.RWMutex
	fns map[string]Function
}

// NewFuncRegistry returns an empty function registry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{fns: make(map[string]Function)}
}

// Register binds fn under its name, enforcing the same naming rules and
// duplicate policy as Registry.
func (r *FuncRegistry) Register(fn Function) error {
	if err := ValidateName(fn.Name); err != nil {
		return err
	}
	if fn.Fn == nil {
		return fmt.Errorf("%w: %q", ErrNilFunc, fn.Name)
	}
	if fn.MinArgs < 0 {
		return fmt.Errorf("function %q: negative MinArgs", fn.Name)
	}
	if fn.MaxArgs >= 0 && fn.MaxArgs < fn.MinArgs {
		return fmt.Errorf("function %q: MaxArgs below MinArgs", fn.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fns[fn.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, fn.Name)
	}
	r.fns[fn.Name] = fn
	return nil
}

// Lookup returns the function bound to name, or ErrNotFound.
func (r *FuncRegistry) Lookup(name string) (Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.fns[name]
	if !ok {
		return Function{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fn, nil
}

// Names returns all registered function names, sorted.
func (r *FuncRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
