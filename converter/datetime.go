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
	"time"

	"github.com/go-openapi/strfmt"

	"dirpx.dev/serx/apis"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateTimeType = reflect.TypeOf(strfmt.DateTime{})
)

// DateTime returns a scalar converter for time.Time and strfmt.DateTime
// (and types convertible to them), written in the strfmt RFC 3339 layout.
func DateTime() apis.Converter {
	return dateTime{}
}

type dateTime struct{}

func (dateTime) OutputKind() apis.OutputKind { return apis.OutputScalar }

func (dateTime) Encode(v reflect.Value) (any, error) {
	if !v.Type().ConvertibleTo(dateTimeType) {
		return nil, fmt.Errorf("%w: %s is not a time", ErrUnsupported, v.Type())
	}
	return v.Convert(dateTimeType).Interface().(strfmt.DateTime).String(), nil
}

func (dateTime) Decode(raw any, target reflect.Value) error {
	s, ok := raw.(string)
	if !ok {
		return shapeError(raw, "string")
	}
	if !dateTimeType.ConvertibleTo(target.Type()) {
		return fmt.Errorf("%w: %s is not a time", ErrUnsupported, target.Type())
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return fmt.Errorf("converter: parse date-time %q: %w", s, err)
	}
	target.Set(reflect.ValueOf(dt).Convert(target.Type()))
	return nil
}
