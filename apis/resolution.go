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

package apis

import "dirpx.dev/serx/typename"

// NameScope is the view of the deserializing configuration that name
// strategies resolve against.
type NameScope interface {
	// Introspector returns the type system of the configuration.
	Introspector() Introspector

	// VersionMatch returns the version matching strategy for qualified names.
	VersionMatch() VersionMatchStrategy

	// RegisteredBySimpleName returns the registered types whose simple name is name.
	RegisteredBySimpleName(name string) []Type

	// Resolve runs the full strategy chain on n. Strategies use it for type arguments.
	Resolve(n typename.Name) (Type, error)
}

// NameStrategy resolves a parsed type-name token to a type.
//
// TryResolve returns handled=false to let the next strategy try. A non-nil
// error with handled=true stops the chain.
type NameStrategy interface {
	Name() string
	TryResolve(n typename.Name, s NameScope) (t Type, handled bool, err error)
}
