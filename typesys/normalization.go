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

package typesys

import (
	"errors"
	"reflect"
)

// DefaultMaxUnwrap bounds how many container layers Normalize peels off.
const DefaultMaxUnwrap = 8

var (
	// ErrNilReflectType is returned when a nil reflect.Type is provided.
	ErrNilReflectType = errors.New("typesys: nil reflect.Type provided")
	// ErrNotNamed indicates that the provided type (after unwrapping containers)
	// does not contain a named type (e.g., anonymous struct, func, interface{}).
	ErrNotNamed = errors.New("typesys: type has no name")
)

// NormalizeOptions tunes Normalize.
type NormalizeOptions struct {
	// MaxUnwrap limits container unwrapping; <= 0 means DefaultMaxUnwrap.
	MaxUnwrap int
	// MapPreferKey makes map[K]V normalize to K before V.
	MapPreferKey bool
}

// Normalize unwraps containers and returns the nearest named inner type,
// or ErrNotNamed if none is found.
//
// Unwrapping policy:
//   - ptr/slice/array/chan  -> Elem()
//   - map[K]V: try the preferred side first (V unless MapPreferKey);
//     if it is named, return it; else try the other side;
//     if still unnamed, continue unwrapping V.
//   - default: if t.Name() != "", return t; otherwise ErrNotNamed.
func Normalize(t reflect.Type, opts NormalizeOptions) (reflect.Type, error) {
	if t == nil {
		return nil, ErrNilReflectType
	}
	maxUnwrap := opts.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = DefaultMaxUnwrap
	}

	for i := 0; t != nil && i < maxUnwrap; i++ {
		if t.Name() != "" {
			return t, nil
		}
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()

		case reflect.Map:
			first, second := t.Elem(), t.Key()
			if opts.MapPreferKey {
				first, second = second, first
			}
			if first.Name() != "" {
				return first, nil
			}
			if second.Name() != "" {
				return second, nil
			}
			t = t.Elem()

		default:
			return nil, ErrNotNamed
		}
	}

	if t != nil && t.Name() != "" {
		return t, nil
	}
	return nil, ErrNotNamed
}
