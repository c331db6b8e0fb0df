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
	"bytes"
	"encoding/json"
	"sort"
)

// Field is one member of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is an ordered object node of a format-neutral tree.
type Object []Field

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes o with its members in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o Object) sortByKey() {
	sort.SliceStable(o, func(i, j int) bool { return o[i].Key < o[j].Key })
}

// Native converts every Object in tree to map[string]any, for formats that
// order members themselves.
func Native(tree any) any {
	switch n := tree.(type) {
	case Object:
		m := make(map[string]any, len(n))
		for _, f := range n {
			m[f.Key] = Native(f.Value)
		}
		return m
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Native(v)
		}
		return out
	default:
		return tree
	}
}
