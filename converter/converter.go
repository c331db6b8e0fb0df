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

// Package converter provides apis.Converter implementations for types that
// serialize as a whole rather than member by member.
package converter

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/serx/apis"
)

var (
	// ErrUnsupported is returned when a converter is applied to a type it cannot handle.
	ErrUnsupported = errors.New("converter: unsupported type")
	// ErrShape is returned when a raw value does not have the shape Encode produces.
	ErrShape = errors.New("converter: unexpected raw shape")
)

func shapeError(raw any, want string) error {
	return fmt.Errorf("%w: got %T, want %s", ErrShape, raw, want)
}

// Func adapts a pair of typed functions to apis.Converter.
func Func[T any](kind apis.OutputKind, encode func(T) (any, error), decode func(any) (T, error)) apis.Converter {
	return funcConverter[T]{kind: kind, encode: encode, decode: decode}
}

type funcConverter[T any] struct {
	kind   apis.OutputKind
	encode func(T) (any, error)
	decode func(any) (T, error)
}

func (c funcConverter[T]) OutputKind() apis.OutputKind { return c.kind }

func (c funcConverter[T]) Encode(v reflect.Value) (any, error) {
	t, ok := v.Interface().(T)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, v.Type())
	}
	return c.encode(t)
}

func (c funcConverter[T]) Decode(raw any, target reflect.Value) error {
	t, err := c.decode(raw)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(&t).Elem()
	if !rv.Type().AssignableTo(target.Type()) {
		return fmt.Errorf("%w: %s", ErrUnsupported, target.Type())
	}
	target.Set(rv)
	return nil
}
