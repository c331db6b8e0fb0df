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

package backend

import (
	"reflect"
	"strings"
	"sync"
)

// field is a serializable struct member, promoted members included.
type field struct {
	name   string
	goName string
	index  []int
}

// fieldCache memoizes the member layout of struct types for one struct tag.
type fieldCache struct {
	tag string
	m   sync.Map // reflect.Type -> []field
}

func (c *fieldCache) of(rt reflect.Type) []field {
	if v, ok := c.m.Load(rt); ok {
		return v.([]field)
	}
	v, _ := c.m.LoadOrStore(rt, collectFields(rt, c.tag))
	return v.([]field)
}

// collectFields lists exported members breadth first: a member declared at
// a shallower depth hides a promoted member of the same name.
func collectFields(rt reflect.Type, tag string) []field {
	type level struct {
		t     reflect.Type
		index []int
	}
	var out []field
	taken := map[string]bool{}
	visited := map[reflect.Type]bool{}
	current := []level{{t: rt}}
	for len(current) > 0 {
		var next []level
		for _, lv := range current {
			if visited[lv.t] {
				continue
			}
			visited[lv.t] = true
			for i := 0; i < lv.t.NumField(); i++ {
				sf := lv.t.Field(i)
				if !sf.IsExported() {
					continue
				}
				name, skip := tagName(sf, tag)
				if skip {
					continue
				}
				index := append(append([]int(nil), lv.index...), i)
				if sf.Anonymous && name == "" {
					ft := sf.Type
					if ft.Kind() == reflect.Pointer {
						ft = ft.Elem()
					}
					if ft.Kind() == reflect.Struct {
						next = append(next, level{t: ft, index: index})
						continue
					}
				}
				if name == "" {
					name = sf.Name
				}
				if taken[name] {
					continue
				}
				taken[name] = true
				out = append(out, field{name: name, goName: sf.Name, index: index})
			}
		}
		current = next
	}
	return out
}

func tagName(sf reflect.StructField, tag string) (string, bool) {
	if tag == "" {
		return "", false
	}
	v := sf.Tag.Get(tag)
	if v == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(v, ",")
	return name, false
}

// fieldByIndexAlloc is reflect.Value.FieldByIndex that allocates nil
// embedded pointers on the way.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
