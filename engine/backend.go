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

package engine

import (
	"dirpx.dev/serx/apis"
)

// Backend is the hook surface a serialization backend exposes to the engine.
type Backend interface {
	// Name identifies the backend in errors and logs ("json", "bson").
	Name() string
	// RegisterType builds the backend's handling for one descriptor. It is
	// called once per registered type, and again when a registration is
	// overwritten. Open generic definitions are never passed.
	RegisterType(d apis.TypeDescriptor) error
	// DefaultPolicy is what PolicyUseBackendDefault means for this backend.
	DefaultPolicy() apis.UnregisteredTypePolicy
	// DefaultDependencies are merged into every configuration that does not opt out.
	DefaultDependencies() []*Spec
}
