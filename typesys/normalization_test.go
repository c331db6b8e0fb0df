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

package typesys_test

import (
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/serx/typesys"
)

type Bars []Square

func TestNormalize_Containers(t *testing.T) {
	sq := reflect.TypeOf(Square{})
	cases := []struct {
		name string
		typ  reflect.Type
		want reflect.Type
	}{
		{"plain", sq, sq},
		{"ptr", reflect.TypeOf(&Square{}), sq},
		{"slice", reflect.TypeOf([]Square{}), sq},
		{"array", reflect.TypeOf([2]Square{}), sq},
		{"chan", reflect.TypeOf((chan Square)(nil)), sq},
		{"nested", reflect.TypeOf([]*[]Square{}), sq},
		{"named slice stays", reflect.TypeOf(Bars{}), reflect.TypeOf(Bars{})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := typesys.Normalize(tc.typ, typesys.NormalizeOptions{})
			if err != nil {
				t.Fatalf("Normalize(%v) returned error: %v", tc.typ, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}

func TestNormalize_MapPreference(t *testing.T) {
	m := reflect.TypeOf(map[string]Square{})
	if got, _ := typesys.Normalize(m, typesys.NormalizeOptions{}); got != reflect.TypeOf(Square{}) {
		t.Fatalf("prefer elem: got %v", got)
	}
	if got, _ := typesys.Normalize(m, typesys.NormalizeOptions{MapPreferKey: true}); got != reflect.TypeOf("") {
		t.Fatalf("prefer key: got %v", got)
	}
}

func TestNormalize_Errors(t *testing.T) {
	if _, err := typesys.Normalize(nil, typesys.NormalizeOptions{}); !errors.Is(err, typesys.ErrNilReflectType) {
		t.Fatalf("nil: %v", err)
	}
	if _, err := typesys.Normalize(reflect.TypeOf(func() {}), typesys.NormalizeOptions{}); !errors.Is(err, typesys.ErrNotNamed) {
		t.Fatalf("func: %v", err)
	}
	deep := reflect.TypeOf([][][]Square{})
	if _, err := typesys.Normalize(deep, typesys.NormalizeOptions{MaxUnwrap: 2}); !errors.Is(err, typesys.ErrNotNamed) {
		t.Fatalf("depth limit: %v", err)
	}
}
