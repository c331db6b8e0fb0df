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
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrConfiguration marks fatal configuration defects.
	ErrConfiguration = errors.New("serx: configuration error")
	// ErrCollision marks a duplicate registration under CollisionThrow.
	ErrCollision = errors.New("serx: registration collision")
	// ErrUnregisteredType marks a type rejected by the unregistered-type policy.
	ErrUnregisteredType = errors.New("serx: unregistered type")
	// ErrTypeResolution marks a serialized type name that could not be resolved.
	ErrTypeResolution = errors.New("serx: type resolution failed")
	// ErrNoActiveConfiguration is returned when a type name is resolved outside a deserialize scope.
	ErrNoActiveConfiguration = errors.New("serx: no configuration is deserializing on this call")
	// ErrNilType is returned for nil type handles.
	ErrNilType = errors.New("serx: nil type")
)

// ConfigurationError is a fatal, non-retryable configuration defect.
type ConfigurationError struct {
	// Op names the failing step (for example "merge" or "json.RegisterType").
	Op string
	// Type is the type involved, if any.
	Type Type
	// Err is the cause.
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("serx: configuration error in %s for %s: %v", e.Op, e.Type.FullName(), e.Err)
	}
	return fmt.Sprintf("serx: configuration error in %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// CollisionError reports a second registration of a type under CollisionThrow.
type CollisionError struct {
	// Type is the type registered twice.
	Type Type
	// Owner is the key of the configuration that registered it first.
	Owner string
	// Sequence is the sequence marker of the first registration.
	Sequence uint64
	// RegisteredAt is when the first registration happened.
	RegisteredAt time.Time
	// Attempted is the key of the configuration attempting the second registration.
	Attempted string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("serx: %s is already registered by %s (#%d at %s); %s attempted to register it again",
		e.Type.FullName(), e.Owner, e.Sequence, e.RegisteredAt.Format(time.RFC3339Nano), e.Attempted)
}

func (e *CollisionError) Is(target error) bool { return target == ErrCollision }

// UnregisteredTypeError reports a type rejected by the unregistered-type policy.
type UnregisteredTypeError struct {
	// Type is the rejected type.
	Type Type
	// Direction is the rejected operation.
	Direction Direction
	// Configuration is the key of the configuration that rejected it.
	Configuration string
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("serx: cannot %s %s: type is not registered in configuration %s",
		e.Direction, e.Type.FullName(), e.Configuration)
}

func (e *UnregisteredTypeError) Is(target error) bool { return target == ErrUnregisteredType }

// ResolutionError reports a serialized type name that resolved to no type.
type ResolutionError struct {
	// Name is the serialized token.
	Name string
	// Candidates lists ambiguous matches, if any.
	Candidates []string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ResolutionError) Error() string {
	switch {
	case len(e.Candidates) > 0:
		return fmt.Sprintf("serx: type name %q is ambiguous: %v", e.Name, e.Candidates)
	case e.Err != nil:
		return fmt.Sprintf("serx: cannot resolve type name %q: %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("serx: cannot resolve type name %q", e.Name)
	}
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrTypeResolution }

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsCollision reports whether err is a collision error.
func IsCollision(err error) bool { return errors.Is(err, ErrCollision) }

// IsUnregisteredType reports whether err is an unregistered-type error.
func IsUnregisteredType(err error) bool { return errors.Is(err, ErrUnregisteredType) }
