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

import (
	"fmt"
	"strings"
)

// Introspector is the type-system capability the engine depends on.
// Implementations must be safe for concurrent use.
type Introspector interface {
	// DataMembers returns the declared, non-inherited, non-synthesized members of t,
	// in declaration order. Non-struct types have no members.
	DataMembers(t Type) []Member

	// ElementType returns the element of a pointer, slice, array or map type
	// (including named slices, arrays and maps).
	ElementType(t Type) (Type, bool)

	// KeyType returns the key type of a map type.
	KeyType(t Type) (Type, bool)

	// GenericArguments returns the type arguments of a closed generic type.
	GenericArguments(t Type) []Type

	// GenericDefinition returns the open definition of a closed generic type.
	GenericDefinition(t Type) (Type, bool)

	// MakeGeneric returns the closed form of def for args.
	MakeGeneric(def Type, args []Type) (Type, error)

	// Supertypes returns the direct supertypes of t within the discovery scope.
	Supertypes(t Type) []Type

	// Subtypes returns the direct subtypes of t within the discovery scope.
	Subtypes(t Type) []Type

	// IsAbstract reports whether t cannot be instantiated directly.
	IsAbstract(t Type) bool

	// ResolveTypeByName resolves a fully-qualified type name.
	ResolveTypeByName(name string, match VersionMatchStrategy) (Type, error)
}

// VersionMatchStrategy controls how the version qualifier of a serialized type
// name is compared with the version of the module loaded in the process.
type VersionMatchStrategy int

const (
	// MatchAnySingleVersion ignores the version qualifier.
	MatchAnySingleVersion VersionMatchStrategy = iota
	// MatchExact requires the qualifier to equal the loaded module version.
	MatchExact
	// MatchSameMajor requires the same semantic major version.
	MatchSameMajor
)

// String returns the canonical token of the strategy.
func (s VersionMatchStrategy) String() string {
	switch s {
	case MatchAnySingleVersion:
		return "AnySingleVersion"
	case MatchExact:
		return "Exact"
	case MatchSameMajor:
		return "SameMajor"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseVersionMatchStrategy parses a case-insensitive strategy token.
func ParseVersionMatchStrategy(s string) (VersionMatchStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anysingleversion", "any":
		return MatchAnySingleVersion, nil
	case "exact":
		return MatchExact, nil
	case "samemajor", "major":
		return MatchSameMajor, nil
	default:
		return MatchAnySingleVersion, fmt.Errorf("serx: unknown version match strategy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s VersionMatchStrategy) MarshalText() ([]byte, error) {
	switch s {
	case MatchAnySingleVersion, MatchExact, MatchSameMajor:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("serx: cannot marshal unknown version match strategy %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *VersionMatchStrategy) UnmarshalText(text []byte) error {
	v, err := ParseVersionMatchStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
