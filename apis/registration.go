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

import "time"

// RegistrationDetails records one registration in a configuration's
// registration map. Values are never mutated after creation.
type RegistrationDetails struct {
	// Descriptor is the descriptor that led to the registration.
	Descriptor TypeDescriptor
	// Owner is the key of the configuration that owns the registration.
	Owner string
	// OwnerID identifies the configuration instance that performed it.
	OwnerID string
	// Sequence orders registrations within one configuration instance.
	Sequence uint64
	// RegisteredAt is the wall-clock time of the registration.
	RegisteredAt time.Time
}

// Type returns the registered type.
func (d RegistrationDetails) Type() Type { return d.Descriptor.Type }

// Deferred reports whether the registration is an open generic definition,
// recorded for post-initialization registration but never handed to a backend.
func (d RegistrationDetails) Deferred() bool {
	return d.Descriptor.Type != nil && d.Descriptor.Type.Kind() == KindGenericDefinition
}
