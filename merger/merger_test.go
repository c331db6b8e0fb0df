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

package merger_test

import (
	"strings"
	"testing"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/merger"
)

type node struct {
	key  string
	deps []*node
	skip bool
}

func (n *node) Key() string                   { return n.key }
func (n *node) Dependencies() []*node         { return n.deps }
func (n *node) SkipDefaultDependencies() bool { return n.skip }

func keys(ns []*node) string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.key
	}
	return strings.Join(out, ",")
}

func TestMerge_PostOrderAndDiamond(t *testing.T) {
	base := &node{key: "base"}
	left := &node{key: "left", deps: []*node{base}}
	right := &node{key: "right", deps: []*node{base}}
	root := &node{key: "root", deps: []*node{left, right}}

	got, err := merger.Merge(root, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if k := keys(got); k != "base,left,right,root" {
		t.Fatalf("order = %s", k)
	}
}

func TestMerge_DefaultsAfterDeclared(t *testing.T) {
	internal := &node{key: "internal", skip: true}
	a := &node{key: "a"}
	root := &node{key: "root", deps: []*node{a}}
	defaults := func(*node) []*node { return []*node{internal} }

	got, err := merger.Merge(root, defaults)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if k := keys(got); k != "internal,a,root" {
		t.Fatalf("order = %s", k)
	}

	root.skip = true
	a.skip = true
	got, _ = merger.Merge(root, defaults)
	if k := keys(got); k != "a,root" {
		t.Fatalf("opted-out order = %s", k)
	}
}

func TestMerge_DedupByKey(t *testing.T) {
	a1 := &node{key: "a"}
	a2 := &node{key: "a"}
	root := &node{key: "root", deps: []*node{a1, a2}}
	got, err := merger.Merge(root, nil)
	if err != nil || keys(got) != "a,root" || got[0] != a1 {
		t.Fatalf("Merge = %s, %v", keys(got), err)
	}
}

func TestMerge_Cycle(t *testing.T) {
	a := &node{key: "a"}
	b := &node{key: "b", deps: []*node{a}}
	a.deps = []*node{b}
	root := &node{key: "root", deps: []*node{a}}

	_, err := merger.Merge(root, nil)
	if !apis.IsConfigurationError(err) {
		t.Fatalf("cycle error = %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("cycle path missing: %v", err)
	}

	self := &node{key: "self"}
	self.deps = []*node{self}
	if _, err := merger.Merge(self, nil); !apis.IsConfigurationError(err) {
		t.Fatalf("self cycle error = %v", err)
	}
}
