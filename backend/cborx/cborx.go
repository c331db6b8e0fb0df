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

// Package cborx is the CBOR backend. Output is deterministic (core
// deterministic encoding, sorted map keys). Polymorphic values are written
// as {"t": "<name>", "v": <payload>}.
package cborx

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/backend"
	"dirpx.dev/serx/engine"
)

// Name is the backend name.
const Name = "cbor"

const (
	// TypeKey holds the type name of a polymorphic value.
	TypeKey = "t"
	// ValueKey holds the payload of a polymorphic value.
	ValueKey = "v"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cborx: encoder mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cborx: decoder mode: %v", err))
	}
}

// Format is the CBOR format.
type Format struct{}

var _ backend.Format = Format{}

func (Format) Name() string { return Name }

func (Format) Shape() backend.Shape {
	return backend.Shape{Tag: "cbor", TypeKey: TypeKey, ValueKey: ValueKey}
}

// DefaultPolicy rejects unregistered types: CBOR payloads are exchanged
// between services that share a registration.
func (Format) DefaultPolicy() apis.UnregisteredTypePolicy { return apis.PolicyThrow }

func (Format) Marshal(tree any) ([]byte, error) {
	return encMode.Marshal(backend.Native(tree))
}

func (Format) Unmarshal(data []byte) (any, error) {
	var tree any
	if err := decMode.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// New creates a CBOR serializer for spec.
func New(spec *engine.Spec, ts backend.TypeSystem, opts ...backend.Option) *backend.Serializer {
	return backend.New(Format{}, spec, ts, opts...)
}
