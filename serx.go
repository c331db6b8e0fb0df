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

package serx

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/serx/backend"
	"dirpx.dev/serx/backend/bsonx"
	"dirpx.dev/serx/backend/cborx"
	"dirpx.dev/serx/backend/jsonx"
	"dirpx.dev/serx/builder"
	"dirpx.dev/serx/config"
	"dirpx.dev/serx/engine"
	"dirpx.dev/serx/logger"
	"dirpx.dev/serx/metrics"
	"dirpx.dev/serx/resolver"
	"dirpx.dev/serx/typesys"
)

// Kind names a serialization backend.
type Kind string

const (
	// JSON is the encoding/json text backend.
	JSON Kind = jsonx.Name
	// BSON is the MongoDB document backend.
	BSON Kind = bsonx.Name
	// CBOR is the deterministic CBOR backend.
	CBOR Kind = cborx.Name
)

// ParseKind parses a backend name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := formatOf(k); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func formatOf(k Kind) (backend.Format, bool) {
	switch k {
	case JSON:
		return jsonx.Format{}, true
	case BSON:
		return bsonx.Format{}, true
	case CBOR:
		return cborx.Format{}, true
	}
	return nil, false
}

var (
	// ErrUnknownKind is returned for backend names that are not built in.
	ErrUnknownKind = errors.New("serx: unknown backend kind")
	// ErrNilSpec is returned when For is called without a spec.
	ErrNilSpec = errors.New("serx: nil spec")
)

// state is an immutable snapshot of the process-wide environment.
type state struct {
	settings config.Settings
	universe *typesys.Universe
	log      logger.Logger
	metrics  *metrics.Collector
	bld      *builder.Builder
	res      *resolver.Adapter
}

// instanceKey identifies a process-wide serializer.
type instanceKey struct {
	kind Kind
	spec string
}

var (
	st        atomic.Pointer[state]
	buildMu   sync.Mutex
	instances sync.Map // instanceKey -> *backend.Serializer
)

func init() {
	s := config.DefaultSettings()
	b := builder.New()
	st.Store(&state{
		settings: s,
		universe: typesys.New(typesys.WithNormalizeOptions(s.Normalize())),
		log:      logger.NewNop(),
		bld:      b,
		res:      b.BuildResolver(),
	})
}

// For returns the process-wide serializer of kind for spec, creating it on
// first use. Serializers are keyed by backend kind and spec name: a later
// call with another spec of the same name returns the first serializer.
func For(kind Kind, spec *engine.Spec) (*backend.Serializer, error) {
	if spec == nil {
		return nil, ErrNilSpec
	}
	key := instanceKey{kind: kind, spec: spec.Key()}
	if v, ok := instances.Load(key); ok {
		return v.(*backend.Serializer), nil
	}
	f, ok := formatOf(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	buildMu.Lock()
	defer buildMu.Unlock()
	if v, ok := instances.Load(key); ok {
		return v.(*backend.Serializer), nil
	}
	s := st.Load()
	ser := backend.New(f, spec, s.universe,
		backend.WithResolver(s.res),
		backend.WithEngineOptions(engine.WithLogger(s.log), engine.WithMetrics(s.metrics)),
	)
	instances.Store(key, ser)
	s.log.Debug("serializer created", "backend", string(kind), "configuration", spec.Key())
	return ser, nil
}

// MustFor is like For but panics on error.
func MustFor(kind Kind, spec *engine.Spec) *backend.Serializer {
	ser, err := For(kind, spec)
	if err != nil {
		panic(err)
	}
	return ser
}

// Configured returns the process-wide serializer of kind for spec with its
// registration done.
func Configured(kind Kind, spec *engine.Spec) (*backend.Serializer, error) {
	ser, err := For(kind, spec)
	if err != nil {
		return nil, err
	}
	if err := ser.Configure(); err != nil {
		return nil, err
	}
	return ser, nil
}

// NewSpec creates a spec whose collision strategy, unregistered-type policy
// and version matching come from the process settings. opts override them.
func NewSpec(name string, opts ...engine.SpecOption) *engine.Spec {
	s := st.Load().settings
	base := []engine.SpecOption{
		engine.WithUnregisteredTypePolicy(s.UnregisteredTypePolicy),
		engine.WithVersionMatch(s.VersionMatch),
	}
	return engine.NewSpec(name, s.CollisionStrategy, append(base, opts...)...)
}

// Universe returns the process-wide type system.
func Universe() *typesys.Universe {
	return st.Load().universe
}

// Resolver returns the process-wide type-name resolution adapter.
func Resolver() *resolver.Adapter {
	return st.Load().res
}

// Settings returns the process settings.
func Settings() config.Settings {
	return st.Load().settings
}

// Logger returns the process logger.
func Logger() logger.Logger {
	return st.Load().log
}

// SetSettings validates s and rebuilds the logger from it. Serializers
// created earlier keep their logger.
func SetSettings(s config.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l, err := s.Logger()
	if err != nil {
		return err
	}

	buildMu.Lock()
	defer buildMu.Unlock()
	old := st.Load()
	st.Store(&state{
		settings: s,
		universe: old.universe,
		log:      l,
		metrics:  old.metrics,
		bld:      old.bld,
		res:      old.res,
	})
	return nil
}

// SetMetrics registers the serx collectors with reg under the configured
// namespace. Serializers created afterwards report to them.
func SetMetrics(reg prometheus.Registerer) error {
	buildMu.Lock()
	defer buildMu.Unlock()
	old := st.Load()
	m, err := metrics.NewCollector(old.settings.MetricsNamespace, reg)
	if err != nil {
		return err
	}
	st.Store(&state{
		settings: old.settings,
		universe: old.universe,
		log:      old.log,
		metrics:  m,
		bld:      old.bld,
		res:      old.res,
	})
	return nil
}

// SetBuilder replaces the builder and rebuilds the resolver with it.
func SetBuilder(b *builder.Builder) {
	if b == nil {
		return
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	old := st.Load()
	st.Store(&state{
		settings: old.settings,
		universe: old.universe,
		log:      old.log,
		metrics:  old.metrics,
		bld:      b,
		res:      b.BuildResolver(),
	})
}

// Reset drops every process-wide serializer and starts over with s, a fresh
// type system and the standard resolver. Meant for tests.
func Reset(s config.Settings) error {
	l, err := s.Logger()
	if err != nil {
		return err
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	b := builder.New()
	st.Store(&state{
		settings: s,
		universe: typesys.New(typesys.WithNormalizeOptions(s.Normalize())),
		log:      l,
		bld:      b,
		res:      b.BuildResolver(),
	})
	instances.Range(func(k, _ any) bool {
		instances.Delete(k)
		return true
	})
	return nil
}
