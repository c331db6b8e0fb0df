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

// Package resolver maps serialized type-name tokens back to types on behalf
// of the configuration that is currently deserializing.
//
// The deserializing configuration travels in a context.Context: a backend
// calls Enter before decoding and hands the derived context to every nested
// decoder, so two configurations decoding on different goroutines never see
// each other's registrations.
package resolver

import (
	"context"
	"time"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/logger"
	"dirpx.dev/serx/metrics"
	"dirpx.dev/serx/typename"
)

// Configuration is the part of a registration configuration the adapter uses.
// *engine.Configuration satisfies it.
type Configuration interface {
	Key() string
	Configure() error
	Introspector() apis.Introspector
	VersionMatch() apis.VersionMatchStrategy
	RegisteredBySimpleName(name string) []apis.Type
	Admit(t apis.Type, dir apis.Direction) error
	Logger() logger.Logger
	Metrics() *metrics.Collector
}

type scopeKey struct{}

// Enter returns a context in which cfg is the deserializing configuration.
// Scopes nest: the innermost Enter wins until its context goes out of use.
func Enter(ctx context.Context, cfg Configuration) context.Context {
	if cfg == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, scopeKey{}, cfg)
	return logger.ContextWithScope(ctx, cfg.Key())
}

// From returns the deserializing configuration of ctx.
func From(ctx context.Context) (Configuration, bool) {
	if ctx == nil {
		return nil, false
	}
	cfg, ok := ctx.Value(scopeKey{}).(Configuration)
	return cfg, ok
}

// Adapter resolves tokens by running name strategies in order. It is
// immutable and safe for concurrent use provided its strategies are.
type Adapter struct {
	strats []apis.NameStrategy
}

// New constructs an Adapter that tries the given strategies in order.
// Nil strategies are ignored.
func New(strategies ...apis.NameStrategy) *Adapter {
	out := make([]apis.NameStrategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Adapter{strats: out}
}

// Strategies returns the strategy names in chain order.
func (a *Adapter) Strategies() []string {
	names := make([]string, len(a.strats))
	for i, s := range a.strats {
		names[i] = s.Name()
	}
	return names
}

// ResolveType maps token to a type using the configuration scoped in ctx.
// A resolved closed generic whose definition is registered is registered on
// first sight; the configuration's unregistered-type policy then applies.
func (a *Adapter) ResolveType(ctx context.Context, token string) (apis.Type, error) {
	cfg, ok := From(ctx)
	if !ok {
		return nil, apis.ErrNoActiveConfiguration
	}
	if err := cfg.Configure(); err != nil {
		return nil, err
	}
	n, err := typename.Parse(token)
	if err != nil {
		return nil, &apis.ResolutionError{Name: token, Err: err}
	}

	start := time.Now()
	s := &scope{Configuration: cfg, chain: a}
	t, err := s.Resolve(n)
	log := cfg.Logger().WithContext(ctx)
	if err != nil {
		log.Debug("type name not resolved", "token", token, "error", err)
		return nil, err
	}
	if err := cfg.Admit(t, apis.Deserialize); err != nil {
		return nil, err
	}
	cfg.Metrics().Resolved(s.last)
	log.Debug("type name resolved", "token", token, "type", t.FullName(), "strategy", s.last, "duration", time.Since(start))
	return t, nil
}

// TypeName returns the token a backend writes for t: the full name, carrying
// the module version when the configuration matches versions.
func (a *Adapter) TypeName(cfg Configuration, t apis.Type) string {
	if t == nil {
		return ""
	}
	if cfg != nil && cfg.VersionMatch() != apis.MatchAnySingleVersion {
		if v, ok := cfg.Introspector().(interface{ VersionedName(apis.Type) string }); ok {
			return v.VersionedName(t)
		}
	}
	return t.FullName()
}

// scope binds a configuration to the chain for one ResolveType call.
type scope struct {
	Configuration
	chain *Adapter
	last  string
}

var _ apis.NameScope = (*scope)(nil)

// Resolve runs the chain on n. A strategy that fails does not end the chain:
// a later one may still resolve n, and the first failure is reported only
// when none does.
func (s *scope) Resolve(n typename.Name) (apis.Type, error) {
	var first error
	for _, st := range s.chain.strats {
		t, ok, err := st.TryResolve(n, s)
		if !ok {
			continue
		}
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		s.last = st.Name()
		return t, nil
	}
	if first != nil {
		return nil, first
	}
	return nil, &apis.ResolutionError{Name: n.String()}
}
