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

// Package bsonx is the BSON backend. Documents carry the type name of a
// polymorphic value in an "_t" member; values that are not documents, and
// scalar roots, are wrapped as {"_v": <value>}.
package bsonx

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/backend"
	"dirpx.dev/serx/engine"
)

// Name is the backend name.
const Name = "bson"

const (
	// TypeKey is the discriminator member of polymorphic documents.
	TypeKey = "_t"
	// ValueKey wraps values that cannot stand as a document.
	ValueKey = "_v"
)

// Format is the BSON format.
type Format struct{}

var _ backend.Format = Format{}

func (Format) Name() string { return Name }

func (Format) Shape() backend.Shape {
	return backend.Shape{
		Tag:          "bson",
		TypeKey:      TypeKey,
		ValueKey:     ValueKey,
		Inline:       true,
		DocumentRoot: true,
	}
}

// DefaultPolicy rejects unregistered types.
func (Format) DefaultPolicy() apis.UnregisteredTypePolicy { return apis.PolicyThrow }

func (Format) Marshal(tree any) ([]byte, error) {
	doc, ok := toBSON(tree).(bson.D)
	if !ok {
		return nil, fmt.Errorf("bsonx: root must be a document, got %T", tree)
	}
	return bson.Marshal(doc)
}

func (Format) Unmarshal(data []byte) (any, error) {
	if err := bson.Raw(data).Validate(); err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromBSON(doc), nil
}

func toBSON(tree any) any {
	switch n := tree.(type) {
	case backend.Object:
		d := make(bson.D, len(n))
		for i, f := range n {
			d[i] = bson.E{Key: f.Key, Value: toBSON(f.Value)}
		}
		return d
	case []any:
		a := make(bson.A, len(n))
		for i, v := range n {
			a[i] = toBSON(v)
		}
		return a
	case []byte:
		return primitive.Binary{Subtype: 0x00, Data: n}
	default:
		return tree
	}
}

func fromBSON(v any) any {
	switch n := v.(type) {
	case bson.D:
		m := make(map[string]any, len(n))
		for _, e := range n {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(n))
		for k, e := range n {
			m[k] = fromBSON(e)
		}
		return m
	case bson.A:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = fromBSON(e)
		}
		return out
	case primitive.Binary:
		return n.Data
	case int32:
		return int64(n)
	default:
		return v
	}
}

// New creates a BSON serializer for spec.
func New(spec *engine.Spec, ts backend.TypeSystem, opts ...backend.Option) *backend.Serializer {
	return backend.New(Format{}, spec, ts, opts...)
}
