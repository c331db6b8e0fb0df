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

package strategy

import (
	"strings"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/typename"
)

// NewGenericStrategy creates an apis.NameStrategy that closes a registered
// open generic definition over the resolved arguments of a short token:
// "Page[Order]" finds the registered definition "Page[_]", resolves "Order"
// through the whole chain and asks the introspector for the closed type.
func NewGenericStrategy() apis.NameStrategy {
	return genericStrategy{}
}

type genericStrategy struct{}

var _ apis.NameStrategy = genericStrategy{}

func (genericStrategy) Name() string { return "generic" }

func (genericStrategy) TryResolve(n typename.Name, s apis.NameScope) (apis.Type, bool, error) {
	if n.Qualified() || n.IsRaw() || n.Arity() == 0 {
		return nil, false, nil
	}
	def, ok, err := pick(n.String(), s.RegisteredBySimpleName(definitionName(n)))
	if !ok || err != nil {
		return nil, ok, err
	}
	args := make([]apis.Type, len(n.Args))
	for i, a := range n.Args {
		at, err := s.Resolve(a)
		if err != nil {
			return nil, true, &apis.ResolutionError{Name: n.String(), Err: err}
		}
		args[i] = at
	}
	t, err := s.Introspector().MakeGeneric(def, args)
	if err != nil {
		return nil, true, &apis.ResolutionError{Name: n.String(), Err: err}
	}
	return t, true, nil
}

// definitionName renders the simple name of n's open definition: "Pair[_,_]".
func definitionName(n typename.Name) string {
	return n.Ident + "[" + strings.TrimSuffix(strings.Repeat("_,", n.Arity()), ",") + "]"
}
