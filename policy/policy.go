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

// Package policy applies the unregistered-type policy at serialize and
// deserialize entry points.
package policy

import (
	"dirpx.dev/serx/apis"
)

// Effective resolves PolicyUseBackendDefault against the backend default.
// A backend default that is itself PolicyUseBackendDefault means PolicyThrow.
func Effective(p, backendDefault apis.UnregisteredTypePolicy) apis.UnregisteredTypePolicy {
	if p != apis.PolicyUseBackendDefault {
		return p
	}
	if backendDefault == apis.PolicyUseBackendDefault {
		return apis.PolicyThrow
	}
	return backendDefault
}

// Check returns an *apis.UnregisteredTypeError when the effective policy is
// PolicyThrow and isRegistered reports t as absent. The string type is exempt.
func Check(t apis.Type, dir apis.Direction, p, backendDefault apis.UnregisteredTypePolicy, owner string, isRegistered func(apis.Type) bool) error {
	if t == nil {
		return &apis.ConfigurationError{Op: "policy." + dir.String(), Err: apis.ErrNilType}
	}
	if apis.IsString(t) {
		return nil
	}
	if Effective(p, backendDefault) != apis.PolicyThrow {
		return nil
	}
	if isRegistered != nil && isRegistered(t) {
		return nil
	}
	return &apis.UnregisteredTypeError{Type: t, Direction: dir, Configuration: owner}
}
