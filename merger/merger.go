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

// Package merger orders a configuration dependency graph for registration.
package merger

import (
	"fmt"
	"strings"

	"dirpx.dev/serx/apis"
)

// Node is a configuration in the dependency graph. Nodes are identified by Key.
type Node[N any] interface {
	// Key identifies the configuration.
	Key() string
	// Dependencies returns the declared dependencies, in declaration order.
	Dependencies() []N
	// SkipDefaultDependencies reports whether default dependencies are omitted.
	SkipDefaultDependencies() bool
}

// Merge returns root and its transitive dependencies in depth-first
// post-order: every node appears after all of its dependencies, siblings keep
// declaration order (declared dependencies first, then defaults), and each key
// appears once. defaults may be nil. A dependency cycle yields an
// *apis.ConfigurationError naming the cycle.
func Merge[N Node[N]](root N, defaults func(N) []N) ([]N, error) {
	m := &merge[N]{
		defaults: defaults,
		state:    make(map[string]int),
	}
	if err := m.visit(root); err != nil {
		return nil, err
	}
	return m.order, nil
}

const (
	visiting = iota + 1
	done
)

type merge[N Node[N]] struct {
	defaults func(N) []N
	state    map[string]int
	path     []string
	order    []N
}

func (m *merge[N]) visit(n N) error {
	key := n.Key()
	switch m.state[key] {
	case done:
		return nil
	case visiting:
		return &apis.ConfigurationError{
			Op:  "merge",
			Err: fmt.Errorf("dependency cycle: %s", strings.Join(append(m.cyclePath(key), key), " -> ")),
		}
	}
	m.state[key] = visiting
	m.path = append(m.path, key)

	deps := n.Dependencies()
	if m.defaults != nil && !n.SkipDefaultDependencies() {
		deps = append(append([]N(nil), deps...), m.defaults(n)...)
	}
	for _, d := range deps {
		if err := m.visit(d); err != nil {
			return err
		}
	}

	m.path = m.path[:len(m.path)-1]
	m.state[key] = done
	m.order = append(m.order, n)
	return nil
}

func (m *merge[N]) cyclePath(key string) []string {
	for i, k := range m.path {
		if k == key {
			return append([]string(nil), m.path[i:]...)
		}
	}
	return append([]string(nil), m.path...)
}
