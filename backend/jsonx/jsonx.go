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

// Package jsonx is the JSON backend. Polymorphic values are written as
// {"$type": "<name>", "$value": <payload>}.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/backend"
	"dirpx.dev/serx/engine"
)

// Name is the backend name.
const Name = "json"

const (
	// TypeKey holds the type name of a polymorphic value.
	TypeKey = "$type"
	// ValueKey holds the payload of a polymorphic value.
	ValueKey = "$value"
)

// Format is the JSON format.
type Format struct {
	// Indent, if set, pretty-prints output with the given indent.
	Indent string
}

var _ backend.Format = Format{}

func (Format) Name() string { return Name }

func (Format) Shape() backend.Shape {
	return backend.Shape{Tag: "json", TypeKey: TypeKey, ValueKey: ValueKey}
}

// DefaultPolicy lets unregistered types through: JSON can write any value.
func (Format) DefaultPolicy() apis.UnregisteredTypePolicy { return apis.PolicyAttempt }

func (f Format) Marshal(tree any) ([]byte, error) {
	if f.Indent != "" {
		return json.MarshalIndent(tree, "", f.Indent)
	}
	return json.Marshal(tree)
}

func (Format) Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: data after the top-level value", backend.ErrShape)
	}
	return normalize(tree)
}

// normalize replaces json.Number with the narrowest of int64, uint64 and float64.
func normalize(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s out of range", backend.ErrShape, n)
		}
		return f, nil
	case map[string]any:
		for k, e := range n {
			x, err := normalize(e)
			if err != nil {
				return nil, err
			}
			n[k] = x
		}
	case []any:
		for i, e := range n {
			x, err := normalize(e)
			if err != nil {
				return nil, err
			}
			n[i] = x
		}
	}
	return v, nil
}

// New creates a JSON serializer for spec.
func New(spec *engine.Spec, ts backend.TypeSystem, opts ...backend.Option) *backend.Serializer {
	return backend.New(Format{}, spec, ts, opts...)
}
