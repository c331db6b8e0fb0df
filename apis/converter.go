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

import "reflect"

// OutputKind is the native token shape a Converter produces.
type OutputKind int

const (
	// OutputObject converters produce a structured object (map[string]any).
	OutputObject OutputKind = iota
	// OutputScalar converters produce a single string.
	OutputScalar
)

// Converter serializes one declared type to and from a backend's native token form.
//
// Backends that cannot write a scalar as a document root wrap OutputScalar
// values transparently.
type Converter interface {
	// OutputKind declares the shape returned by Encode.
	OutputKind() OutputKind
	// Encode converts v to a string (OutputScalar) or a map[string]any (OutputObject).
	Encode(v reflect.Value) (any, error)
	// Decode populates target (settable) from raw, which has the shape Encode produces.
	Decode(raw any, target reflect.Value) error
}
