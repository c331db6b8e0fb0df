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

// Package builder assembles the standard type-name resolution chain.
package builder

import (
	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/resolver"
	"dirpx.dev/serx/strategy"
)

// Builder composes resolvers. The zero value is not usable; call New.
type Builder struct {
	custom []apis.NameStrategy
}

// New creates a Builder for the standard chain.
func New() *Builder {
	return &Builder{}
}

// WithStrategies adds strategies tried before the standard ones.
func (b *Builder) WithStrategies(s ...apis.NameStrategy) *Builder {
	b.custom = append(b.custom, s...)
	return b
}

// BuildResolver returns an adapter running, in order: custom strategies,
// qualified names, registered short names, predeclared names and short
// generic names closed from registered definitions.
func (b *Builder) BuildResolver() *resolver.Adapter {
	chain := append([]apis.NameStrategy(nil), b.custom...)
	chain = append(chain,
		strategy.NewQualifiedStrategy(),
		strategy.NewLegacyStrategy(),
		strategy.NewBuiltinStrategy(),
		strategy.NewGenericStrategy(),
	)
	return resolver.New(chain...)
}
