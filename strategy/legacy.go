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

// NewLegacyStrategy creates an apis.NameStrategy for short tokens written by
// older producers ("Order", "Page[Order]"), and for qualified tokens whose
// package or version no longer resolves. Only registered types are
// candidates; more than one candidate is an ambiguity error.
func NewLegacyStrategy() apis.NameStrategy {
	return legacyStrategy{}
}

type legacyStrategy struct{}

var _ apis.NameStrategy = legacyStrategy{}

func (legacyStrategy) Name() string { return "legacy" }

// TryResolve looks the short form of n up among the registered simple names.
func (legacyStrategy) TryResolve(n typename.Name, s apis.NameScope) (apis.Type, bool, error) {
	if n.IsRaw() {
		return nil, false, nil
	}
	return pick(n.String(), s.RegisteredBySimpleName(n.Short()))
}

// pick returns the single candidate, defers on none and fails on many.
func pick(token string, candidates []apis.Type) (apis.Type, bool, error) {
	switch len(candidates) {
	case 0:
		return nil, false, nil
	case 1:
		return candidates[0], true, nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.FullName()
		}
		return nil, true, &apis.ResolutionError{Name: token, Candidates: names}
	}
}
