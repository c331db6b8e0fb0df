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
	"encoding"
	"fmt"
	"reflect"

	"dirpx.dev/serx/apis"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Text returns a scalar converter for types implementing encoding.TextMarshaler
// and, through their pointer, encoding.TextUnmarshaler (enums, identifiers).
func Text() apis.Converter {
	return text{}
}

type text struct{}

func (text) OutputKind() apis.OutputKind { return apis.OutputScalar }

func (text) Encode(v reflect.Value) (any, error) {
	m, ok := marshaler(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not implement encoding.TextMarshaler", ErrUnsupported, v.Type())
	}
	b, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (text) Decode(raw any, target reflect.Value) error {
	s, ok := raw.(string)
	if !ok {
		return shapeError(raw, "string")
	}
	if !target.CanAddr() || !reflect.PointerTo(target.Type()).Implements(textUnmarshalerType) {
		return fmt.Errorf("%w: %s does not implement encoding.TextUnmarshaler", ErrUnsupported, target.Type())
	}
	return target.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
}

func marshaler(v reflect.Value) (encoding.TextMarshaler, bool) {
	if v.Type().Implements(textMarshalerType) {
		return v.Interface().(encoding.TextMarshaler), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(textMarshalerType) {
		return v.Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}
