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

package engine

import (
	"dirpx.dev/serx/apis"
)

// Spec declares a configuration: what to register, what it depends on, and
// how collisions and unregistered types are handled. Specs are plain data;
// the preset functions below build the common shapes.
//
// Specs are identified by Name. Two specs with the same Name are the same
// node of the dependency graph.
type Spec struct {
	// Name identifies the configuration.
	Name string
	// DependsOn lists configurations merged before this one, in order.
	DependsOn []*Spec
	// NoDefaultDependencies opts out of the backend's default dependencies.
	NoDefaultDependencies bool
	// TypesToRegister are the declared roots, expanded per their descriptors.
	TypesToRegister []apis.TypeDescriptor
	// TypesToAutoRegister are registered as-is, without expansion.
	TypesToAutoRegister []apis.Type
	// CollisionStrategy applies to types this configuration registers.
	// The zero value is rejected by Configure.
	CollisionStrategy apis.CollisionStrategy
	// UnregisteredTypePolicy applies when this spec is the configuration root.
	UnregisteredTypePolicy apis.UnregisteredTypePolicy
	// VersionMatch applies to qualified type names read by this configuration.
	VersionMatch apis.VersionMatchStrategy
}

// Key implements the merge graph node contract.
func (s *Spec) Key() string { return s.Name }

// Dependencies implements the merge graph node contract.
func (s *Spec) Dependencies() []*Spec { return s.DependsOn }

// SkipDefaultDependencies implements the merge graph node contract.
func (s *Spec) SkipDefaultDependencies() bool { return s.NoDefaultDependencies }

// Roots returns the descriptors this spec declares, auto-registered types last.
func (s *Spec) Roots() []apis.TypeDescriptor {
	out := make([]apis.TypeDescriptor, 0, len(s.TypesToRegister)+len(s.TypesToAutoRegister))
	out = append(out, s.TypesToRegister...)
	for _, t := range s.TypesToAutoRegister {
		d := apis.Declare(t, apis.MemberTypesNone, apis.RelatedNone)
		d.Reason = apis.ReasonAutoRegistered
		out = append(out, d)
	}
	return out
}

// SpecOption customizes a Spec built by a preset.
type SpecOption func(*Spec)

// WithDependencies appends dependencies.
func WithDependencies(deps ...*Spec) SpecOption {
	return func(s *Spec) { s.DependsOn = append(s.DependsOn, deps...) }
}

// WithTypes appends declared roots.
func WithTypes(ds ...apis.TypeDescriptor) SpecOption {
	return func(s *Spec) { s.TypesToRegister = append(s.TypesToRegister, ds...) }
}

// WithAutoRegister appends types registered without expansion.
func WithAutoRegister(ts ...apis.Type) SpecOption {
	return func(s *Spec) { s.TypesToAutoRegister = append(s.TypesToAutoRegister, ts...) }
}

// WithCollisionStrategy sets the collision strategy.
func WithCollisionStrategy(c apis.CollisionStrategy) SpecOption {
	return func(s *Spec) { s.CollisionStrategy = c }
}

// WithUnregisteredTypePolicy sets the unregistered-type policy.
func WithUnregisteredTypePolicy(p apis.UnregisteredTypePolicy) SpecOption {
	return func(s *Spec) { s.UnregisteredTypePolicy = p }
}

// WithVersionMatch sets the version match strategy.
func WithVersionMatch(m apis.VersionMatchStrategy) SpecOption {
	return func(s *Spec) { s.VersionMatch = m }
}

// WithoutDefaultDependencies opts out of backend default dependencies.
func WithoutDefaultDependencies() SpecOption {
	return func(s *Spec) { s.NoDefaultDependencies = true }
}

// NewSpec builds a spec with an explicit collision strategy.
func NewSpec(name string, strategy apis.CollisionStrategy, opts ...SpecOption) *Spec {
	s := &Spec{Name: name, CollisionStrategy: strategy}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DependenciesOnly builds a spec that only aggregates other configurations.
func DependenciesOnly(name string, deps ...*Spec) *Spec {
	return NewSpec(name, apis.CollisionSkip, WithDependencies(deps...))
}

// TypesOnly builds a spec that registers roots expanded with every member
// category and per-target related types.
func TypesOnly(name string, strategy apis.CollisionStrategy, types ...apis.Type) *Spec {
	ds := make([]apis.TypeDescriptor, len(types))
	for i, t := range types {
		ds[i] = apis.DeclareAll(t)
	}
	return NewSpec(name, strategy, WithTypes(ds...))
}

// DiscoveryOnly builds a spec that registers types without expansion.
func DiscoveryOnly(name string, types ...apis.Type) *Spec {
	return NewSpec(name, apis.CollisionSkip, WithAutoRegister(types...))
}

// NullSpec builds an empty spec without default dependencies. Configuring
// it yields an empty registration map.
func NullSpec(name string) *Spec {
	return NewSpec(name, apis.CollisionSkip, WithoutDefaultDependencies())
}
