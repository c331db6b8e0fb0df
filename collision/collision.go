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

// Package collision decides what happens when a type that already has
// registration details is registered again.
package collision

import (
	"fmt"

	"dirpx.dev/serx/apis"
)

// Outcome is the decision of Resolve.
type Outcome int

const (
	// Skip keeps the existing registration and discards the new attempt.
	Skip Outcome = iota
	// Overwrite replaces the registration and re-runs the backend hook.
	Overwrite
)

// String returns the name of o.
func (o Outcome) String() string {
	switch o {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// Resolve applies strategy to a second registration of t attempted by the
// configuration keyed attempted. CollisionThrow yields *apis.CollisionError;
// an invalid strategy yields *apis.ConfigurationError.
func Resolve(t apis.Type, existing apis.RegistrationDetails, strategy apis.CollisionStrategy, attempted string) (Outcome, error) {
	switch strategy {
	case apis.CollisionSkip:
		return Skip, nil
	case apis.CollisionOverwrite:
		return Overwrite, nil
	case apis.CollisionThrow:
		return Skip, &apis.CollisionError{
			Type:         t,
			Owner:        existing.Owner,
			Sequence:     existing.Sequence,
			RegisteredAt: existing.RegisteredAt,
			Attempted:    attempted,
		}
	default:
		return Skip, &apis.ConfigurationError{
			Op:   "collision",
			Type: t,
			Err:  fmt.Errorf("collision strategy %s is not set; choose Skip, Throw or Overwrite", strategy),
		}
	}
}
