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

// Package typesys implements apis.Introspector over Go's reflect package.
//
// A Universe is the discovery scope: supertypes and subtypes are searched
// among the types it has observed, and serialized type names resolve against
// them. Observing a type observes everything reachable from it (fields,
// elements, keys), so type arguments spelled inside generic names resolve too.
package typesys

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/typename"
)

// Option configures a Universe.
type Option func(*Universe)

// WithModuleVersion records the loaded version of a module, overriding the build info.
func WithModuleVersion(module, version string) Option {
	return func(u *Universe) { u.versions[module] = version }
}

// WithoutBuildInfo skips reading module versions from the binary's build info.
func WithoutBuildInfo() Option {
	return func(u *Universe) { u.buildInfo = false }
}

// WithNormalizeOptions sets how RuntimeType unwraps containers.
func WithNormalizeOptions(o NormalizeOptions) Option {
	return func(u *Universe) { u.norm = o }
}

// Universe is a concurrency-safe, reflect-backed apis.Introspector.
type Universe struct {
	mu sync.RWMutex
	// seen holds every observed reflect.Type.
	seen map[reflect.Type]struct{}
	// byName maps unversioned full names to handles.
	byName map[string]apis.Type
	// named lists observed named, non-intrinsic types for super/subtype scans.
	named []reflect.Type
	// versions maps module paths to loaded versions.
	versions  map[string]string
	buildInfo bool
	norm      NormalizeOptions
}

var _ apis.Introspector = (*Universe)(nil)

var predeclared = []reflect.Type{
	reflect.TypeOf(false),
	reflect.TypeOf(""),
	reflect.TypeOf(int(0)), reflect.TypeOf(int8(0)), reflect.TypeOf(int16(0)), reflect.TypeOf(int32(0)), reflect.TypeOf(int64(0)),
	reflect.TypeOf(uint(0)), reflect.TypeOf(uint8(0)), reflect.TypeOf(uint16(0)), reflect.TypeOf(uint32(0)), reflect.TypeOf(uint64(0)),
	reflect.TypeOf(uintptr(0)),
	reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0)),
	reflect.TypeOf(complex64(0)), reflect.TypeOf(complex128(0)),
	reflect.TypeOf((*error)(nil)).Elem(),
}

// New returns a Universe seeded with the predeclared types.
func New(opts ...Option) *Universe {
	u := &Universe{
		seen:      make(map[reflect.Type]struct{}),
		byName:    make(map[string]apis.Type),
		versions:  make(map[string]string),
		buildInfo: true,
	}
	overrides := make(map[string]string)
	for _, o := range opts {
		o(u)
	}
	for k, v := range u.versions {
		overrides[k] = v
	}
	if u.buildInfo {
		if bi, ok := debug.ReadBuildInfo(); ok {
			u.versions[bi.Main.Path] = bi.Main.Version
			for _, dep := range bi.Deps {
				m := dep
				if m.Replace != nil {
					m = m.Replace
				}
				u.versions[dep.Path] = m.Version
			}
		}
		for k, v := range overrides {
			u.versions[k] = v
		}
	}
	u.Add(predeclared...)
	return u
}

// Add observes rts and everything reachable from them.
func (u *Universe) Add(rts ...reflect.Type) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, rt := range rts {
		u.observe(rt)
	}
}

// Of observes rt and returns its handle. A nil rt yields nil.
func (u *Universe) Of(rt reflect.Type) apis.Type {
	if rt == nil {
		return nil
	}
	u.mu.RLock()
	_, ok := u.seen[rt]
	u.mu.RUnlock()
	if !ok {
		u.Add(rt)
	}
	return rtype{rt: rt}
}

// TypeOf observes the dynamic type of v and returns its handle.
func (u *Universe) TypeOf(v any) apis.Type {
	return u.Of(reflect.TypeOf(v))
}

// For returns the handle of T.
func For[T any](u *Universe) apis.Type {
	return u.Of(reflect.TypeOf((*T)(nil)).Elem())
}

// DefinitionOf returns the open generic definition of the closed generic type rt.
func (u *Universe) DefinitionOf(rt reflect.Type) (apis.Type, bool) {
	if rt == nil {
		return nil, false
	}
	u.Of(rt)
	def, _, ok := definitionOf(rt)
	if !ok {
		return nil, false
	}
	return def, true
}

// Reflect returns the reflect.Type behind a handle created by a Universe.
// Generic definitions have none.
func (u *Universe) Reflect(t apis.Type) (reflect.Type, bool) {
	if h, ok := t.(rtype); ok {
		return h.rt, true
	}
	return nil, false
}

// RuntimeType returns the handle of the nearest named type of v's dynamic type,
// unwrapping pointers and containers.
func (u *Universe) RuntimeType(v any) (apis.Type, error) {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return nil, apis.ErrNilType
	}
	nt, err := Normalize(rt, u.norm)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, rt)
	}
	return u.Of(nt), nil
}

// observe must be called with u.mu held for writing.
func (u *Universe) observe(rt reflect.Type) {
	if rt == nil {
		return
	}
	if _, ok := u.seen[rt]; ok {
		return
	}
	u.seen[rt] = struct{}{}
	h := rtype{rt: rt}
	if rt.Name() != "" || kindOf(rt).Container() {
		u.byName[h.FullName()] = h
	}
	if def, _, ok := definitionOf(rt); ok {
		u.byName[def.FullName()] = def
	}
	if rt.Name() != "" && !apis.IsIntrinsic(h) {
		u.named = append(u.named, rt)
	}
	switch rt.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
		u.observe(rt.Elem())
	case reflect.Map:
		u.observe(rt.Key())
		u.observe(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			u.observe(rt.Field(i).Type)
		}
	}
}

func (u *Universe) lookup(full string) (apis.Type, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	t, ok := u.byName[full]
	return t, ok
}

// DataMembers returns declared struct fields, skipping embedded and blank ones.
func (u *Universe) DataMembers(t apis.Type) []apis.Member {
	rt, ok := u.Reflect(t)
	if !ok || rt.Kind() != reflect.Struct {
		return nil
	}
	var out []apis.Member
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.Anonymous || f.Name == "_" {
			continue
		}
		out = append(out, apis.Member{Name: f.Name, Type: u.Of(f.Type), Exported: f.IsExported()})
	}
	return out
}

// ElementType implements apis.Introspector.
func (u *Universe) ElementType(t apis.Type) (apis.Type, bool) {
	rt, ok := u.Reflect(t)
	if !ok {
		return nil, false
	}
	switch rt.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
		return u.Of(rt.Elem()), true
	}
	return nil, false
}

// KeyType implements apis.Introspector.
func (u *Universe) KeyType(t apis.Type) (apis.Type, bool) {
	rt, ok := u.Reflect(t)
	if !ok || rt.Kind() != reflect.Map {
		return nil, false
	}
	return u.Of(rt.Key()), true
}

// GenericArguments returns the arguments of a closed generic type that the
// universe can resolve. Arguments never observed (phantom parameters) are omitted.
func (u *Universe) GenericArguments(t apis.Type) []apis.Type {
	rt, ok := u.Reflect(t)
	if !ok {
		return nil
	}
	_, n, ok := definitionOf(rt)
	if !ok {
		return nil
	}
	out := make([]apis.Type, 0, n.Arity())
	for _, a := range n.Args {
		if at, ok := u.lookup(a.Unversioned()); ok {
			out = append(out, at)
		}
	}
	return out
}

// GenericDefinition implements apis.Introspector.
func (u *Universe) GenericDefinition(t apis.Type) (apis.Type, bool) {
	rt, ok := u.Reflect(t)
	if !ok {
		return nil, false
	}
	def, _, ok := definitionOf(rt)
	if !ok {
		return nil, false
	}
	return def, true
}

// MakeGeneric returns an observed instantiation of def with args.
func (u *Universe) MakeGeneric(def apis.Type, args []apis.Type) (apis.Type, error) {
	d, ok := def.(genericDef)
	if !ok {
		return nil, fmt.Errorf("typesys: %v is not a generic definition", def)
	}
	if len(args) != d.arity {
		return nil, fmt.Errorf("typesys: %s takes %d type arguments, got %d", d.FullName(), d.arity, len(args))
	}
	names := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			return nil, apis.ErrNilType
		}
		names[i] = a.FullName()
	}
	full := d.pkg + "." + d.ident + "[" + strings.Join(names, ",") + "]"
	t, ok := u.lookup(full)
	if !ok {
		return nil, fmt.Errorf("typesys: no instantiation %s has been observed", full)
	}
	return t, nil
}

// Supertypes returns embedded named types and the observed interfaces t implements.
func (u *Universe) Supertypes(t apis.Type) []apis.Type {
	rt, ok := u.Reflect(t)
	if !ok || rt.Name() == "" {
		return nil
	}
	set := make(map[reflect.Type]struct{})
	if rt.Kind() == reflect.Struct {
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Name() != "" {
				set[ft] = struct{}{}
			}
		}
	}
	for _, it := range u.snapshotNamed() {
		if it == rt || it.Kind() != reflect.Interface || it.NumMethod() == 0 {
			continue
		}
		if implements(rt, it) {
			set[it] = struct{}{}
		}
	}
	return u.sorted(set)
}

// Subtypes returns the observed types that embed or implement t.
func (u *Universe) Subtypes(t apis.Type) []apis.Type {
	rt, ok := u.Reflect(t)
	if !ok || rt.Name() == "" {
		return nil
	}
	set := make(map[reflect.Type]struct{})
	for _, ct := range u.snapshotNamed() {
		if ct == rt {
			continue
		}
		switch rt.Kind() {
		case reflect.Interface:
			if rt.NumMethod() > 0 && implements(ct, rt) {
				set[ct] = struct{}{}
			}
		case reflect.Struct:
			if embeds(ct, rt) {
				set[ct] = struct{}{}
			}
		}
	}
	return u.sorted(set)
}

// IsAbstract reports whether t is an interface type.
func (u *Universe) IsAbstract(t apis.Type) bool {
	rt, ok := u.Reflect(t)
	return ok && rt.Kind() == reflect.Interface
}

// ResolveTypeByName resolves an observed type by its full name and checks the
// version qualifier, if any, against the loaded module version.
func (u *Universe) ResolveTypeByName(name string, match apis.VersionMatchStrategy) (apis.Type, error) {
	n, err := typename.Parse(name)
	if err != nil {
		return nil, &apis.ResolutionError{Name: name, Err: err}
	}
	t, ok := u.lookup(n.Unversioned())
	if !ok {
		return nil, &apis.ResolutionError{Name: name}
	}
	if n.Version == "" || match == apis.MatchAnySingleVersion {
		return t, nil
	}
	loaded := u.ModuleVersion(t.PkgPath())
	switch match {
	case apis.MatchExact:
		if loaded != n.Version {
			return nil, &apis.ResolutionError{Name: name, Err: fmt.Errorf("loaded version %q does not equal %q", loaded, n.Version)}
		}
	case apis.MatchSameMajor:
		if !semver.IsValid(loaded) || semver.Major(loaded) != semver.Major(n.Version) {
			return nil, &apis.ResolutionError{Name: name, Err: fmt.Errorf("loaded version %q is not major %s", loaded, semver.Major(n.Version))}
		}
	default:
		return nil, &apis.ResolutionError{Name: name, Err: fmt.Errorf("unknown version match strategy %s", match)}
	}
	return t, nil
}

// ModuleVersion returns the loaded version of the module that contains pkg.
func (u *Universe) ModuleVersion(pkg string) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	best, version := "", ""
	for mod, v := range u.versions {
		if (pkg == mod || strings.HasPrefix(pkg, mod+"/")) && len(mod) > len(best) {
			best, version = mod, v
		}
	}
	return version
}

// VersionedName returns the full name of t qualified with its module version, if known.
func (u *Universe) VersionedName(t apis.Type) string {
	v := u.ModuleVersion(t.PkgPath())
	if v == "" || v == "(devel)" {
		return t.FullName()
	}
	return t.FullName() + "@" + v
}

func (u *Universe) snapshotNamed() []reflect.Type {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]reflect.Type(nil), u.named...)
}

func (u *Universe) sorted(set map[reflect.Type]struct{}) []apis.Type {
	out := make([]apis.Type, 0, len(set))
	for rt := range set {
		out = append(out, u.Of(rt))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	return out
}

func implements(ct, it reflect.Type) bool {
	if ct.Implements(it) {
		return true
	}
	return ct.Kind() != reflect.Interface && reflect.PointerTo(ct).Implements(it)
}

func embeds(ct, base reflect.Type) bool {
	if ct.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < ct.NumField(); i++ {
		f := ct.Field(i)
		if !f.Anonymous {
			continue
		}
		if f.Type == base || (f.Type.Kind() == reflect.Ptr && f.Type.Elem() == base) {
			return true
		}
	}
	return false
}
