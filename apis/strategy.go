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

// CollisionStrategy decides what happens when a type is registered twice.
//
// The zero value is CollisionInvalid and is rejected by the engine, so a
// configuration author has to choose a strategy explicitly.
type CollisionStrategy int

const (
	// CollisionInvalid is the unset strategy.
	CollisionInvalid CollisionStrategy = iota
	// CollisionSkip keeps the existing registration.
	CollisionSkip
	// CollisionThrow fails with a CollisionError.
	CollisionThrow
	// CollisionOverwrite replaces the registration and re-runs the backend hook.
	CollisionOverwrite
)

// String returns the canonical token of s.
func (s CollisionStrategy) String() string {
	switch s {
	case CollisionInvalid:
		return "Invalid"
	case CollisionSkip:
		return "Skip"
	case CollisionThrow:
		return "Throw"
	case CollisionOverwrite:
		return "Overwrite"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseCollisionStrategy parses a case-insensitive token. "Invalid" is not accepted.
func ParseCollisionStrategy(s string) (CollisionStrategy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return CollisionInvalid, fmt.Errorf("serx: empty collision strategy")
	}
	switch strings.ToLower(trimmed) {
	case "skip":
		return CollisionSkip, nil
	case "throw":
		return CollisionThrow, nil
	case "overwrite":
		return CollisionOverwrite, nil
	default:
		return CollisionInvalid, fmt.Errorf("serx: unknown collision strategy %q", s)
	}
}

// MustParseCollisionStrategy is like ParseCollisionStrategy but panics on invalid input.
func MustParseCollisionStrategy(s string) CollisionStrategy {
	v, err := ParseCollisionStrategy(s)
	if err != nil {
		panic(err)
	}
	return v
}

// MarshalText implements encoding.TextMarshaler. Invalid strategies are not persisted.
func (s CollisionStrategy) MarshalText() ([]byte, error) {
	switch s {
	case CollisionSkip, CollisionThrow, CollisionOverwrite:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("serx: cannot marshal collision strategy %s", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure s is unchanged.
func (s *CollisionStrategy) UnmarshalText(text []byte) error {
	v, err := ParseCollisionStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// UnregisteredTypePolicy decides what serialize and deserialize calls do with
// types missing from the registration map.
type UnregisteredTypePolicy int

const (
	// PolicyUseBackendDefault defers to the backend's own default.
	PolicyUseBackendDefault UnregisteredTypePolicy = iota
	// PolicyThrow fails fast with an UnregisteredTypeError.
	PolicyThrow
	// PolicyAttempt proceeds and lets the backend decide.
	PolicyAttempt
)

// String returns the canonical token of p.
func (p UnregisteredTypePolicy) String() string {
	switch p {
	case PolicyUseBackendDefault:
		return "UseBackendDefault"
	case PolicyThrow:
		return "Throw"
	case PolicyAttempt:
		return "Attempt"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseUnregisteredTypePolicy parses a case-insensitive token.
func ParseUnregisteredTypePolicy(s string) (UnregisteredTypePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "usebackenddefault", "default":
		return PolicyUseBackendDefault, nil
	case "throw":
		return PolicyThrow, nil
	case "attempt":
		return PolicyAttempt, nil
	default:
		return PolicyUseBackendDefault, fmt.Errorf("serx: unknown unregistered type policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p UnregisteredTypePolicy) MarshalText() ([]byte, error) {
	switch p {
	case PolicyUseBackendDefault, PolicyThrow, PolicyAttempt:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("serx: cannot marshal unregistered type policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *UnregisteredTypePolicy) UnmarshalText(text []byte) error {
	v, err := ParseUnregisteredTypePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Direction tells whether a value is being serialized or deserialized.
type Direction int

const (
	// Serialize is the encode direction.
	Serialize Direction = iota
	// Deserialize is the decode direction.
	Deserialize
)

// String returns the name of d.
func (d Direction) String() string {
	switch d {
	case Serialize:
		return "serialize"
	case Deserialize:
		return "deserialize"
	default:
		return fmt.Sprintf("Unknown(%d)", int(d))
	}
}
