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

package converter

import (
	"fmt"
	"reflect"

	"dirpx.dev/serx/apis"
)

// Redacted is what Secret writes in place of the value.
const Redacted = "******"

// Secret returns a write-redacting scalar converter for string types such as
// strfmt.Password: values are read verbatim and always written as Redacted.
func Secret() apis.Converter {
	return secret{}
}

type secret struct{}

func (secret) OutputKind() apis.OutputKind { return apis.OutputScalar }

func (secret) Encode(v reflect.Value) (any, error) {
	if v.Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %s is not a string type", ErrUnsupported, v.Type())
	}
	return Redacted, nil
}

func (secret) Decode(raw any, target reflect.Value) error {
	s, ok := raw.(string)
	if !ok {
		return shapeError(raw, "string")
	}
	if target.Kind() != reflect.String {
		return fmt.Errorf("%w: %s is not a string type", ErrUnsupported, target.Type())
	}
	target.SetString(s)
	return nil
}
