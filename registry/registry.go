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

// Package registry holds a configuration's registration map: the
// concurrency-safe association from type to registration details.
package registry

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"dirpx.dev/serx/apis"
)

var (
	// ErrNotRegistered is returned by Replace for a type that has no entry.
	ErrNotRegistered = errors.New("serx(registry): type is not registered")
)

// Registry maps types to registration details.
// Reads are lock-free; writes are serialized so add-if-absent is atomic.
type Registry struct {
	// ownerID stamps every entry.
	ownerID string
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// m maps apis.Type to apis.RegistrationDetails.
	m sync.Map
	// names maps simple names to []apis.Type; slices are replaced, never mutated.
	names sync.Map
	// count tracks the number of registered entries.
	count int
	seq   atomic.Uint64
	now   func() time.Time
}

// New constructs an empty Registry for the configuration instance ownerID.
func New(ownerID string) *Registry {
	return &Registry{ownerID: ownerID, now: time.Now}
}

// OwnerID returns the instance ID stamped on entries.
func (r *Registry) OwnerID() string { return r.ownerID }

// Add registers d.Type on behalf of the configuration keyed owner if it has
// no entry, and returns the new details. Otherwise it returns the existing
// details and false.
func (r *Registry) Add(owner string, d apis.TypeDescriptor) (apis.RegistrationDetails, bool, error) {
	if d.Type == nil {
		return apis.RegistrationDetails{}, false, apis.ErrNilType
	}

	// Fast read path without locking.
	if old, ok := r.m.Load(d.Type); ok {
		return old.(apis.RegistrationDetails), false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if old, ok := r.m.Load(d.Type); ok {
		return old.(apis.RegistrationDetails), false, nil
	}

	details := r.details(owner, d)
	r.m.Store(d.Type, details)
	r.index(d.Type)
	r.count++
	return details, true, nil
}

// Replace overwrites the entry of d.Type with fresh details owned by owner.
func (r *Registry) Replace(owner string, d apis.TypeDescriptor) (apis.RegistrationDetails, error) {
	if d.Type == nil {
		return apis.RegistrationDetails{}, apis.ErrNilType
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m.Load(d.Type); !ok {
		return apis.RegistrationDetails{}, ErrNotRegistered
	}
	details := r.details(owner, d)
	r.m.Store(d.Type, details)
	return details, nil
}

// Restore puts back previous details of t, or removes t when prev is the zero value.
func (r *Registry) Restore(t apis.Type, prev apis.RegistrationDetails) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev.Descriptor.Type != nil {
		r.m.Store(t, prev)
		return
	}
	if _, ok := r.m.LoadAndDelete(t); ok {
		r.count--
		r.unindex(t)
	}
}

func (r *Registry) details(owner string, d apis.TypeDescriptor) apis.RegistrationDetails {
	return apis.RegistrationDetails{
		Descriptor:   d,
		Owner:        owner,
		OwnerID:      r.ownerID,
		Sequence:     r.seq.Add(1),
		RegisteredAt: r.now(),
	}
}

// index must be called with r.mu held.
func (r *Registry) index(t apis.Type) {
	name := t.Name()
	var prev []apis.Type
	if v, ok := r.names.Load(name); ok {
		prev = v.([]apis.Type)
	}
	next := make([]apis.Type, len(prev), len(prev)+1)
	copy(next, prev)
	r.names.Store(name, append(next, t))
}

// unindex must be called with r.mu held.
func (r *Registry) unindex(t apis.Type) {
	name := t.Name()
	v, ok := r.names.Load(name)
	if !ok {
		return
	}
	var next []apis.Type
	for _, x := range v.([]apis.Type) {
		if x != t {
			next = append(next, x)
		}
	}
	if len(next) == 0 {
		r.names.Delete(name)
		return
	}
	r.names.Store(name, next)
}

// Lookup returns the details of t if present.
func (r *Registry) Lookup(t apis.Type) (apis.RegistrationDetails, bool) {
	if t == nil {
		return apis.RegistrationDetails{}, false
	}
	if v, ok := r.m.Load(t); ok {
		return v.(apis.RegistrationDetails), true
	}
	return apis.RegistrationDetails{}, false
}

// Contains reports whether t has an entry.
func (r *Registry) Contains(t apis.Type) bool {
	_, ok := r.Lookup(t)
	return ok
}

// BySimpleName returns the registered types whose simple name is name,
// sorted by full name.
func (r *Registry) BySimpleName(name string) []apis.Type {
	v, ok := r.names.Load(name)
	if !ok {
		return nil
	}
	out := append([]apis.Type(nil), v.([]apis.Type)...)
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}

// Entries returns a snapshot ordered by registration sequence.
func (r *Registry) Entries() []apis.RegistrationDetails {
	entries := make([]apis.RegistrationDetails, 0, r.Count())
	r.m.Range(func(_, value any) bool {
		entries = append(entries, value.(apis.RegistrationDetails))
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries
}

// Count returns the number of registered entries.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
