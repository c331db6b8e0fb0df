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
	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/typename"
)

// NewBuiltinStrategy creates an apis.NameStrategy for predeclared type names
// such as "int" or "string", which have no package path in either form.
func NewBuiltinStrategy() apis.NameStrategy {
	return builtinStrategy{}
}

type builtinStrategy struct{}

var _ apis.NameStrategy = builtinStrategy{}

func (builtinStrategy) Name() string { return "builtin" }

func (builtinStrategy) TryResolve(n typename.Name, s apis.NameScope) (apis.Type, bool, error) {
	if n.Qualified() || n.IsRaw() || n.Arity() > 0 {
		return nil, false, nil
	}
	t, err := s.Introspector().ResolveTypeByName(n.Ident, apis.MatchAnySingleVersion)
	if err != nil || t.Kind() != apis.KindBasic {
		return nil, false, nil
	}
	return t, true, nil
}
