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

// Package expander computes the transitive closure of types reachable from
// declared type descriptors.
//
// The walk is breadth-first with a visited set keyed by type: a type is
// expanded at most once per run, but every edge that reaches it is recorded.
// Predeclared and standard library types are never emitted as discovered
// children, and unnamed containers are transparent: a member of type
// []*Bar contributes Bar.
package expander

import (
	"dirpx.dev/serx/apis"
)

// Edge records one expansion step.
type Edge struct {
	From   apis.Type
	To     apis.Type
	Reason apis.Reason
}

// Closure is the result of an expansion run.
type Closure struct {
	descriptors []apis.TypeDescriptor
	index       map[apis.Type]int
	edges       []Edge
}

// Descriptors returns the descriptors in discovery order: seeds in
// declaration order, then discovered types breadth-first.
func (c *Closure) Descriptors() []apis.TypeDescriptor {
	return append([]apis.TypeDescriptor(nil), c.descriptors...)
}

// Edges returns every expansion edge, including edges to types reached earlier.
func (c *Closure) Edges() []Edge {
	return append([]Edge(nil), c.edges...)
}

// Len returns the number of distinct types in the closure.
func (c *Closure) Len() int { return len(c.descriptors) }

// Lookup returns the descriptor of t, if t is in the closure.
func (c *Closure) Lookup(t apis.Type) (apis.TypeDescriptor, bool) {
	i, ok := c.index[t]
	if !ok {
		return apis.TypeDescriptor{}, false
	}
	return c.descriptors[i], true
}

// Expand computes the closure of a single seed.
func Expand(seed apis.TypeDescriptor, in apis.Introspector) *Closure {
	return ExpandAll([]apis.TypeDescriptor{seed}, in)
}

// ExpandAll computes the closure of seeds with one shared visited set.
// When a type is declared more than once, or declared and also reachable
// from another seed, the first declaration wins.
func ExpandAll(seeds []apis.TypeDescriptor, in apis.Introspector) *Closure {
	c := &Closure{index: make(map[apis.Type]int)}
	var queue []int
	for _, s := range seeds {
		if s.Type == nil {
			continue
		}
		if c.add(s) {
			queue = append(queue, len(c.descriptors)-1)
		}
	}
	for len(queue) > 0 {
		d := c.descriptors[queue[0]]
		queue = queue[1:]
		for _, step := range children(d, in) {
			c.edges = append(c.edges, Edge{From: d.Type, To: step.t, Reason: step.reason})
			if c.add(d.Spawn(step.t, step.reason)) {
				queue = append(queue, len(c.descriptors)-1)
			}
		}
	}
	return c
}

func (c *Closure) add(d apis.TypeDescriptor) bool {
	if _, ok := c.index[d.Type]; ok {
		return false
	}
	c.index[d.Type] = len(c.descriptors)
	c.descriptors = append(c.descriptors, d)
	return true
}

type step struct {
	t      apis.Type
	reason apis.Reason
}

// children returns the distinct types one expansion step away from d.Type.
func children(d apis.TypeDescriptor, in apis.Introspector) []step {
	t := d.Type
	if t.Kind() == apis.KindGenericDefinition {
		return nil
	}
	var out []step
	seen := make(map[apis.Type]struct{})
	emit := func(ct apis.Type, reason apis.Reason) {
		for _, nt := range named(ct, in) {
			if _, ok := seen[nt]; ok {
				continue
			}
			seen[nt] = struct{}{}
			out = append(out, step{t: nt, reason: reason})
		}
	}

	members := d.MemberTypes
	if members.Has(apis.DeclaredProperties) || members.Has(apis.DeclaredFields) {
		for _, m := range in.DataMembers(t) {
			if (m.Exported && members.Has(apis.DeclaredProperties)) || (!m.Exported && members.Has(apis.DeclaredFields)) {
				emit(m.Type, apis.ReasonGettingMemberTypes)
			}
		}
	}
	if members.Has(apis.GenericArguments) {
		for _, a := range in.GenericArguments(t) {
			emit(a, apis.ReasonGettingGenericArguments)
		}
	}
	if members.Has(apis.ArrayElement) {
		if k, ok := in.KeyType(t); ok {
			emit(k, apis.ReasonGettingArrayElement)
		}
		if e, ok := in.ElementType(t); ok {
			emit(e, apis.ReasonGettingArrayElement)
		}
	}

	related := d.RelatedTypes.Resolve(t, in)
	if related.Ancestors() {
		for _, s := range in.Supertypes(t) {
			emit(s, apis.ReasonGettingAncestors)
		}
	}
	if related.Descendants() {
		for _, s := range in.Subtypes(t) {
			emit(s, apis.ReasonGettingDescendants)
		}
	}
	return out
}

// named unwraps unnamed containers and drops intrinsic and unsupported types.
func named(t apis.Type, in apis.Introspector) []apis.Type {
	if t == nil {
		return nil
	}
	switch {
	case t.Kind() == apis.KindInvalid:
		return nil
	case t.Kind().Container():
		var out []apis.Type
		if k, ok := in.KeyType(t); ok {
			out = append(out, named(k, in)...)
		}
		if e, ok := in.ElementType(t); ok {
			out = append(out, named(e, in)...)
		}
		return out
	case apis.IsIntrinsic(t):
		return nil
	default:
		return []apis.Type{t}
	}
}
