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

// NewQualifiedStrategy creates an apis.NameStrategy for package-qualified
// tokens. The introspector resolves them and checks the version qualifier
// with the scope's version matching strategy.
func NewQualifiedStrategy() apis.NameStrategy {
	return qualifiedStrategy{}
}

// qualifiedStrategy reports a failure for qualified tokens it cannot resolve.
// The chain goes on to the registered simple names.
type qualifiedStrategy struct{}

var _ apis.NameStrategy = qualifiedStrategy{}

func (qualifiedStrategy) Name() string { return "qualified" }

// TryResolve resolves n through the introspector when n carries a package path.
func (qualifiedStrategy) TryResolve(n typename.Name, s apis.NameScope) (apis.Type, bool, error) {
	if !n.Qualified() || n.IsRaw() {
		return nil, false, nil
	}
	t, err := s.Introspector().ResolveTypeByName(n.String(), s.VersionMatch())
	if err != nil {
		return nil, true, err
	}
	return t, true, nil
}
