/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package backend holds what the serialization backends share: the
// per-configuration contract table filled by the registration hook, the
// reflective walker that turns values into format-neutral trees and back,
// and the Serializer that ties a Format to a registration configuration.
//
// A format-neutral tree is built from nil, bool, string, int64, uint64,
// float64, []byte, []any and Object on the way out. Formats hand back
// map[string]any for objects and may use any numeric type on the way in.
package backend

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/engine"
)

var (
	// ErrMissingDiscriminator is returned when a polymorphic position holds no type name.
	ErrMissingDiscriminator = errors.New("backend: missing type discriminator")
	// ErrIncompatibleType is returned when a resolved type cannot be stored in its target.
	ErrIncompatibleType = errors.New("backend: resolved type is not assignable to target")
	// ErrUnsupportedType is returned for kinds no format can carry (funcs, channels).
	ErrUnsupportedType = errors.New("backend: unsupported type")
	// ErrShape is returned when decoded data does not match the target type.
	ErrShape = errors.New("backend: data does not match target type")
	// ErrInvalidTarget is returned when a decode target is not a non-nil pointer.
	ErrInvalidTarget = errors.New("backend: target must be a non-nil pointer")
)

func shapeError(raw any, rt reflect.Type) error {
	return fmt.Errorf("%w: cannot decode %T into %s", ErrShape, raw, rt)
}

// TypeSystem is the introspector backends need: it maps registered types
// back to runtime types. *typesys.Universe satisfies it.
type TypeSystem interface {
	apis.Introspector
	Add(rts ...reflect.Type)
	Of(rt reflect.Type) apis.Type
	Reflect(t apis.Type) (reflect.Type, bool)
	RuntimeType(v any) (apis.Type, error)
}

// Contract is the handling a configuration registered for one runtime type.
type Contract struct {
	// Type is the registered type.
	Type apis.Type
	// Converter serializes the type as a whole, if set.
	Converter apis.Converter
	// Whitelist restricts the written members, if non-empty.
	Whitelist map[string]struct{}
}

// Allows reports whether the member named name or goName is written.
func (c *Contract) Allows(name, goName string) bool {
	if c == nil || len(c.Whitelist) == 0 {
		return true
	}
	_, ok := c.Whitelist[name]
	if !ok {
		_, ok = c.Whitelist[goName]
	}
	return ok
}

// Table is the contract table of one configuration. It implements
// engine.Backend: the engine fills it through RegisterType.
type Table struct {
	name      string
	ts        TypeSystem
	policy    apis.UnregisteredTypePolicy
	deps      []*engine.Spec
	contracts sync.Map // reflect.Type -> *Contract
}

var _ engine.Backend = (*Table)(nil)

// NewTable creates the contract table of a backend named name.
func NewTable(name string, ts TypeSystem, policy apis.UnregisteredTypePolicy, deps ...*engine.Spec) *Table {
	return &Table{name: name, ts: ts, policy: policy, deps: deps}
}

// Name returns the backend name.
func (t *Table) Name() string { return t.name }

// DefaultPolicy returns the backend's unregistered-type policy.
func (t *Table) DefaultPolicy() apis.UnregisteredTypePolicy { return t.policy }

// DefaultDependencies returns the specs merged into every configuration of the backend.
func (t *Table) DefaultDependencies() []*engine.Spec { return t.deps }

// RegisterType records the contract of d. A later call for the same type
// replaces the contract.
func (t *Table) RegisterType(d apis.TypeDescriptor) error {
	rt, ok := t.ts.Reflect(d.Type)
	if !ok {
		return fmt.Errorf("backend: %s has no runtime type", d.Type.FullName())
	}
	c := &Contract{Type: d.Type}
	if a := d.Augmentation; a != nil {
		c.Converter = a.Converter
		if len(a.PropertyWhitelist) > 0 {
			c.Whitelist = make(map[string]struct{}, len(a.PropertyWhitelist))
			for _, p := range a.PropertyWhitelist {
				c.Whitelist[p] = struct{}{}
			}
		}
	}
	t.contracts.Store(rt, c)
	return nil
}

// Contract returns the contract registered for rt.
func (t *Table) Contract(rt reflect.Type) (*Contract, bool) {
	v, ok := t.contracts.Load(rt)
	if !ok {
		return nil, false
	}
	return v.(*Contract), true
}

// TypeSystem returns the table's type system.
func (t *Table) TypeSystem() TypeSystem { return t.ts }
