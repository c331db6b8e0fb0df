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

// Package engine runs the registration pipeline of a configuration: merge
// the dependency graph, expand each node's roots to their closure, arbitrate
// repeated registrations and hand every new type to the backend.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/collision"
	"dirpx.dev/serx/expander"
	"dirpx.dev/serx/logger"
	"dirpx.dev/serx/merger"
	"dirpx.dev/serx/metrics"
	"dirpx.dev/serx/policy"
	"dirpx.dev/serx/registry"
)

// Option configures a Configuration.
type Option func(*Configuration)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(c *Configuration) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the metrics collector. nil disables metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Configuration) { c.metrics = m }
}

// Configuration is one configuration instance: a root spec bound to a
// backend and an introspector, plus the registration map it produces.
// All methods are safe for concurrent use.
type Configuration struct {
	spec    *Spec
	backend Backend
	in      apis.Introspector
	log     logger.Logger
	metrics *metrics.Collector
	id      string
	reg     *registry.Registry

	// mu serializes Configure; configured publishes err and nodes.
	mu         sync.Mutex
	configured atomic.Bool
	err        error
	order      []string

	// post serializes post-initialization registrations.
	post sync.Mutex
}

// New binds spec to backend and in. Nothing runs until Configure.
func New(spec *Spec, backend Backend, in apis.Introspector, opts ...Option) *Configuration {
	id := uuid.NewString()
	c := &Configuration{
		spec:    spec,
		backend: backend,
		in:      in,
		log:     logger.NewNop(),
		id:      id,
		reg:     registry.New(id),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("configuration", c.Key(), "backend", c.backendName(), "instance", id)
	return c
}

func (c *Configuration) backendName() string {
	if c.backend == nil {
		return ""
	}
	return c.backend.Name()
}

// ID identifies this configuration instance.
func (c *Configuration) ID() string { return c.id }

// Key is the root spec name.
func (c *Configuration) Key() string {
	if c.spec == nil {
		return ""
	}
	return c.spec.Name
}

// Spec returns the root spec.
func (c *Configuration) Spec() *Spec { return c.spec }

// Introspector returns the type-system capability the configuration uses.
func (c *Configuration) Introspector() apis.Introspector { return c.in }

// Logger returns the configuration's logger.
func (c *Configuration) Logger() logger.Logger { return c.log }

// Metrics returns the configuration's metrics collector, possibly nil.
func (c *Configuration) Metrics() *metrics.Collector { return c.metrics }

// VersionMatch is the version match strategy of the root spec.
func (c *Configuration) VersionMatch() apis.VersionMatchStrategy {
	if c.spec == nil {
		return apis.MatchAnySingleVersion
	}
	return c.spec.VersionMatch
}

// Policy is the root spec's unregistered-type policy resolved against the backend default.
func (c *Configuration) Policy() apis.UnregisteredTypePolicy {
	return policy.Effective(c.rootPolicy(), c.backendDefault())
}

func (c *Configuration) rootPolicy() apis.UnregisteredTypePolicy {
	if c.spec == nil {
		return apis.PolicyUseBackendDefault
	}
	return c.spec.UnregisteredTypePolicy
}

func (c *Configuration) backendDefault() apis.UnregisteredTypePolicy {
	if c.backend == nil {
		return apis.PolicyUseBackendDefault
	}
	return c.backend.DefaultPolicy()
}

// Configured reports whether Configure has completed, successfully or not.
func (c *Configuration) Configured() bool { return c.configured.Load() }

// Configure runs the registration pipeline exactly once. Concurrent callers
// block until the first run completes; later calls return its result.
// A failed run is not retried.
func (c *Configuration) Configure() error {
	if c.configured.Load() {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configured.Load() {
		return c.err
	}

	start := time.Now()
	c.err = c.configure()
	c.metrics.ObserveConfigure(c.Key(), time.Since(start))
	if c.err != nil {
		c.log.Error("configure failed", "error", c.err)
	} else {
		c.log.Info("configured", "types", c.reg.Count(), "order", c.order, "duration", time.Since(start))
	}
	c.configured.Store(true)
	return c.err
}

func (c *Configuration) configure() error {
	if c.spec == nil {
		return &apis.ConfigurationError{Op: "configure", Err: fmt.Errorf("nil spec")}
	}
	if c.backend == nil || c.in == nil {
		return &apis.ConfigurationError{Op: "configure", Err: fmt.Errorf("configuration %q needs a backend and an introspector", c.spec.Name)}
	}

	order, err := merger.Merge(c.spec, func(*Spec) []*Spec { return c.backend.DefaultDependencies() })
	if err != nil {
		return err
	}
	c.order = make([]string, len(order))
	for i, n := range order {
		c.order[i] = n.Name
		if err := validateNode(n); err != nil {
			return err
		}
	}
	c.log.Debug("merge order", "order", c.order)

	for _, n := range order {
		closure := expander.ExpandAll(n.Roots(), c.in)
		for _, d := range closure.Descriptors() {
			if err := c.register(n, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateNode(n *Spec) error {
	if _, err := n.CollisionStrategy.MarshalText(); err != nil {
		return &apis.ConfigurationError{
			Op:  "configure",
			Err: fmt.Errorf("configuration %q: collision strategy %s is not set; choose Skip, Throw or Overwrite", n.Name, n.CollisionStrategy),
		}
	}
	for _, d := range n.Roots() {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// register runs one descriptor through the registration path on behalf of n.
func (c *Configuration) register(n *Spec, d apis.TypeDescriptor) error {
	existing, added, err := c.reg.Add(n.Name, d)
	if err != nil {
		return &apis.ConfigurationError{Op: "register", Type: d.Type, Err: err}
	}
	if added {
		if existing.Deferred() {
			c.log.Debug("deferred open generic definition", "type", d.Type.FullName(), "owner", n.Name)
			return nil
		}
		c.log.Debug("registered", "type", d.Type.FullName(), "owner", n.Name, "reason", d.Reason.String())
		return c.hook(d)
	}

	outcome, err := collision.Resolve(d.Type, existing, n.CollisionStrategy, n.Name)
	if err != nil {
		c.metrics.Collision(c.Key(), "throw")
		c.log.Warn("registration collision", "type", d.Type.FullName(), "owner", existing.Owner, "attempted", n.Name, "error", err)
		return err
	}
	c.metrics.Collision(c.Key(), outcome.String())
	if outcome == collision.Skip {
		c.log.Debug("registration skipped", "type", d.Type.FullName(), "owner", existing.Owner, "attempted", n.Name)
		return nil
	}

	replaced, err := c.reg.Replace(n.Name, d)
	if err != nil {
		return &apis.ConfigurationError{Op: "register", Type: d.Type, Err: err}
	}
	c.log.Warn("registration overwritten", "type", d.Type.FullName(), "owner", existing.Owner, "attempted", n.Name)
	if replaced.Deferred() {
		return nil
	}
	if err := c.hook(d); err != nil {
		c.reg.Restore(d.Type, existing)
		return err
	}
	return nil
}

func (c *Configuration) hook(d apis.TypeDescriptor) error {
	if err := c.backend.RegisterType(d); err != nil {
		return &apis.ConfigurationError{Op: c.backend.Name() + ".RegisterType", Type: d.Type, Err: err}
	}
	c.metrics.Registered(c.Key(), d.Reason.String())
	return nil
}

// RegisterClosedGenericIfAppropriate registers a closed generic type whose
// open definition is registered, reusing the definition's augmentation.
// It is a no-op for types that are not closed generics or are already
// registered, and a configuration error when the definition is not registered.
func (c *Configuration) RegisterClosedGenericIfAppropriate(t apis.Type) error {
	if err := c.Configure(); err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	def, ok := c.in.GenericDefinition(t)
	if !ok || c.reg.Contains(t) {
		return nil
	}

	c.post.Lock()
	defer c.post.Unlock()
	if c.reg.Contains(t) {
		return nil
	}
	owner, ok := c.reg.Lookup(def)
	if !ok {
		return &apis.ConfigurationError{
			Op:   "RegisterClosedGenericIfAppropriate",
			Type: t,
			Err:  fmt.Errorf("open generic definition %s is not registered", def.FullName()),
		}
	}

	od := owner.Descriptor
	d := apis.TypeDescriptor{
		Type:            t,
		RecursiveOrigin: od.RecursiveOrigin,
		DirectOrigin:    def,
		MemberTypes:     od.MemberTypes,
		RelatedTypes:    od.RelatedTypes,
		Reason:          apis.ReasonPostInitialization,
		Augmentation:    od.Augmentation.Clone(),
	}
	// The backend holds the contract before the entry becomes visible to
	// the lock-free Contains check above.
	if err := c.hook(d); err != nil {
		return err
	}
	if _, _, err := c.reg.Add(owner.Owner, d); err != nil {
		return &apis.ConfigurationError{Op: "RegisterClosedGenericIfAppropriate", Type: t, Err: err}
	}
	c.log.Debug("registered closed generic", "type", t.FullName(), "definition", def.FullName(), "owner", owner.Owner)
	return nil
}

// ThrowOnUnregisteredTypeIfAppropriate applies the unregistered-type policy
// of this configuration to t for dir.
func (c *Configuration) ThrowOnUnregisteredTypeIfAppropriate(t apis.Type, dir apis.Direction) error {
	if err := c.Configure(); err != nil {
		return err
	}
	err := policy.Check(t, dir, c.rootPolicy(), c.backendDefault(), c.Key(), c.IsRegistered)
	if err != nil && apis.IsUnregisteredType(err) {
		c.metrics.Unregistered(c.Key(), dir.String())
		c.log.Debug("unregistered type rejected", "type", t.FullName(), "direction", dir.String())
	}
	return err
}

// Admit is the entry-point guard backends call before encoding or decoding
// a value of type t: closed generics whose definition is registered are
// registered on first sight, then the unregistered-type policy applies.
// A closed generic of an unregistered definition is left to the policy.
func (c *Configuration) Admit(t apis.Type, dir apis.Direction) error {
	if err := c.Configure(); err != nil {
		return err
	}
	if t != nil {
		if def, ok := c.in.GenericDefinition(t); ok && c.reg.Contains(def) {
			if err := c.RegisterClosedGenericIfAppropriate(t); err != nil {
				return err
			}
		}
	}
	return c.ThrowOnUnregisteredTypeIfAppropriate(t, dir)
}

// Lookup returns the registration details of t.
func (c *Configuration) Lookup(t apis.Type) (apis.RegistrationDetails, bool) {
	return c.reg.Lookup(t)
}

// IsRegistered reports whether t has registration details.
func (c *Configuration) IsRegistered(t apis.Type) bool {
	return c.reg.Contains(t)
}

// RegisteredBySimpleName returns registered types whose simple name is name.
func (c *Configuration) RegisteredBySimpleName(name string) []apis.Type {
	return c.reg.BySimpleName(name)
}

// Registrations returns the registration map ordered by registration sequence.
func (c *Configuration) Registrations() []apis.RegistrationDetails {
	return c.reg.Entries()
}

// Deferred returns the registered open generic definitions.
func (c *Configuration) Deferred() []apis.RegistrationDetails {
	var out []apis.RegistrationDetails
	for _, d := range c.reg.Entries() {
		if d.Deferred() {
			out = append(out, d)
		}
	}
	return out
}

// MergeOrder returns the spec names in registration order. It is empty
// before Configure.
func (c *Configuration) MergeOrder() []string {
	if !c.configured.Load() {
		return nil
	}
	return append([]string(nil), c.order...)
}
