// Package settings is the registry of named tunables that pass components
// expose to the host application (thresholds, clear colours, exposure).
//
// Components register their settings from Initialise; the host lists,
// formats, and overrides them, typically from a configuration file.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Registry errors.
var (
	// ErrTypeConflict is returned when a name is registered twice with different types.
	ErrTypeConflict = errors.New("settings: type conflict")

	// ErrUnknownSetting is returned when applying a value to a name that was never registered.
	ErrUnknownSetting = errors.New("settings: unknown setting")
)

// Entry is the type-erased view of a registered setting.
type Entry interface {
	// Name returns the unique setting name.
	Name() string

	// Description returns the human-readable description.
	Description() string

	// Format returns the current value formatted with %v.
	Format() string

	// Reset restores the default value.
	Reset()

	set(raw json.RawMessage) error
}

// Setting is a single typed tunable.
type Setting[T any] struct {
	name        string
	description string
	def         T

	// Value is the current value. Components read it on every Draw.
	Value T
}

// Name returns the unique setting name.
func (s *Setting[T]) Name() string { return s.name }

// Description returns the human-readable description.
func (s *Setting[T]) Description() string { return s.description }

// Default returns the registered default.
func (s *Setting[T]) Default() T { return s.def }

// Format returns the current value formatted with %v.
func (s *Setting[T]) Format() string { return fmt.Sprintf("%v", s.Value) }

// Reset restores the default value.
func (s *Setting[T]) Reset() { s.Value = s.def }

func (s *Setting[T]) set(raw json.RawMessage) error {
	v := s.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("settings: %s: %w", s.name, err)
	}
	s.Value = v
	return nil
}

// Registry holds settings in registration order.
// Registry is NOT safe for concurrent use.
type Registry struct {
	byName map[string]Entry
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Entry)}
}

// Register adds a setting with the given default. Registering the same
// name again with the same type returns the existing setting, so shared
// components may register from every Initialise call.
func Register[T any](r *Registry, name, description string, def T) (*Setting[T], error) {
	if existing, ok := r.byName[name]; ok {
		s, ok := existing.(*Setting[T])
		if !ok {
			return nil, fmt.Errorf("%w: %q is %T", ErrTypeConflict, name, existing)
		}
		return s, nil
	}
	s := &Setting[T]{name: name, description: description, def: def, Value: def}
	r.byName[name] = s
	r.order = append(r.order, name)
	return s, nil
}

// Lookup returns the setting registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// All returns every setting in registration order.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

// Apply decodes JSON values onto registered settings. Unknown names are
// collected and reported together after all known names are applied.
func (r *Registry) Apply(values map[string]json.RawMessage) error {
	var errs []error
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		e, ok := r.byName[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSetting, name))
			continue
		}
		if err := e.set(values[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
