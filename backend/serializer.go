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

package backend

import (
	"context"
	"fmt"
	"reflect"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/builder"
	"dirpx.dev/serx/engine"
	"dirpx.dev/serx/resolver"
)

// Format turns format-neutral trees into bytes and back.
type Format interface {
	// Name is the backend name used in logs, metrics and errors.
	Name() string
	// Shape describes the member and discriminator layout.
	Shape() Shape
	// DefaultPolicy is the unregistered-type policy of the backend.
	DefaultPolicy() apis.UnregisteredTypePolicy
	// Marshal encodes a tree.
	Marshal(tree any) ([]byte, error)
	// Unmarshal decodes data into a tree with map[string]any objects.
	Unmarshal(data []byte) (any, error)
}

// Option configures a Serializer.
type Option func(*options)

type options struct {
	engine  []engine.Option
	adapter *resolver.Adapter
	deps    []*engine.Spec
	depsSet bool
}

// WithEngineOptions passes options to the registration configuration.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) { o.engine = append(o.engine, opts...) }
}

// WithResolver replaces the standard type-name resolution chain.
func WithResolver(a *resolver.Adapter) Option {
	return func(o *options) { o.adapter = a }
}

// WithDefaultDependencies replaces the specs merged into every configuration
// of the backend. The internally-required spec is the default.
func WithDefaultDependencies(specs ...*engine.Spec) Option {
	return func(o *options) {
		o.deps = specs
		o.depsSet = true
	}
}

// Serializer serializes values under one registration configuration.
// It is safe for concurrent use.
type Serializer struct {
	format Format
	table  *Table
	cfg    *engine.Configuration
	walk   *walker
}

// New creates a Serializer for format over spec. Registration runs on first use.
func New(format Format, spec *engine.Spec, ts TypeSystem, opts ...Option) *Serializer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.depsSet {
		o.deps = []*engine.Spec{Internal(ts)}
	}
	if o.adapter == nil {
		o.adapter = builder.New().BuildResolver()
	}
	table := NewTable(format.Name(), ts, format.DefaultPolicy(), o.deps...)
	cfg := engine.New(spec, table, ts, o.engine...)
	return &Serializer{
		format: format,
		table:  table,
		cfg:    cfg,
		walk: &walker{
			table:   table,
			cfg:     cfg,
			adapter: o.adapter,
			shape:   format.Shape(),
			fields:  fieldCache{tag: format.Shape().Tag},
		},
	}
}

// Name returns the backend name.
func (s *Serializer) Name() string { return s.format.Name() }

// Configuration returns the registration configuration.
func (s *Serializer) Configuration() *engine.Configuration { return s.cfg }

// Table returns the contract table filled by registration.
func (s *Serializer) Table() *Table { return s.table }

// Configure runs registration if it has not run yet.
func (s *Serializer) Configure() error { return s.cfg.Configure() }

// Serialize encodes v. Values held in interface-typed members carry their
// type name; the root does not.
func (s *Serializer) Serialize(ctx context.Context, v any) ([]byte, error) {
	if err := s.cfg.Configure(); err != nil {
		return nil, err
	}
	var tree any
	if v != nil {
		if err := s.admitValue(v, apis.Serialize); err != nil {
			return nil, err
		}
		var err error
		if tree, err = s.walk.encode(ctx, reflect.ValueOf(v)); err != nil {
			return nil, fmt.Errorf("%s: serialize %T: %w", s.Name(), v, err)
		}
	}
	return s.marshal(ctx, tree)
}

// SerializeAny encodes v together with its type name so DeserializeAny can
// restore it without a typed target.
func (s *Serializer) SerializeAny(ctx context.Context, v any) ([]byte, error) {
	if err := s.cfg.Configure(); err != nil {
		return nil, err
	}
	var tree any
	if v != nil {
		var err error
		if tree, err = s.walk.encodeDynamic(ctx, reflect.ValueOf(v), nil); err != nil {
			return nil, fmt.Errorf("%s: serialize %T: %w", s.Name(), v, err)
		}
	}
	return s.marshal(ctx, tree)
}

// Deserialize decodes data into target, which must be a non-nil pointer.
// A pointer to an interface expects a type name at the root.
func (s *Serializer) Deserialize(ctx context.Context, data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: %T", ErrInvalidTarget, target)
	}
	if err := s.cfg.Configure(); err != nil {
		return err
	}
	if rv.Elem().Kind() != reflect.Interface {
		if err := s.admitValue(target, apis.Deserialize); err != nil {
			return err
		}
	}
	tree, err := s.unmarshal(data)
	if err != nil {
		return err
	}
	ctx = resolver.Enter(ctx, s.cfg)
	if err := s.walk.decode(ctx, tree, rv.Elem()); err != nil {
		return fmt.Errorf("%s: deserialize %s: %w", s.Name(), rv.Elem().Type(), err)
	}
	return nil
}

// DeserializeAny decodes data written by SerializeAny.
func (s *Serializer) DeserializeAny(ctx context.Context, data []byte) (any, error) {
	if err := s.cfg.Configure(); err != nil {
		return nil, err
	}
	tree, err := s.unmarshal(data)
	if err != nil {
		return nil, err
	}
	if m, ok := tree.(map[string]any); !ok || m[s.walk.shape.TypeKey] == nil {
		if tree == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w at the root", s.Name(), ErrMissingDiscriminator)
	}
	var out any
	ctx = resolver.Enter(ctx, s.cfg)
	if err := s.walk.decode(ctx, tree, reflect.ValueOf(&out).Elem()); err != nil {
		return nil, fmt.Errorf("%s: deserialize: %w", s.Name(), err)
	}
	return out, nil
}

// admitValue applies closed-generic registration and the unregistered-type
// policy to the nearest named type of v. Values without one are not checked.
func (s *Serializer) admitValue(v any, dir apis.Direction) error {
	t, err := s.table.ts.RuntimeType(v)
	if err != nil {
		s.cfg.Logger().Debug("root type not checked", "value", fmt.Sprintf("%T", v), "error", err)
		return nil
	}
	return s.cfg.Admit(t, dir)
}

func (s *Serializer) marshal(ctx context.Context, tree any) ([]byte, error) {
	if _, ok := tree.(Object); !ok && s.walk.shape.DocumentRoot {
		tree = Object{{Key: s.walk.shape.ValueKey, Value: tree}}
	}
	data, err := s.format.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", s.Name(), err)
	}
	s.cfg.Logger().WithContext(ctx).Debug("serialized", "bytes", len(data))
	return data, nil
}

func (s *Serializer) unmarshal(data []byte) (any, error) {
	tree, err := s.format.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: unmarshal: %w", s.Name(), err)
	}
	if m, ok := tree.(map[string]any); ok && s.walk.shape.DocumentRoot && len(m) == 1 {
		if v, ok := m[s.walk.shape.ValueKey]; ok {
			return v, nil
		}
	}
	return tree, nil
}
