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

package cborx_test

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/backend/cborx"
	"dirpx.dev/serx/engine"
	"dirpx.dev/serx/typesys"
)

type Event interface{ Kind() string }

type Created struct {
	ID   string `cbor:"id"`
	Size uint32 `cbor:"size"`
}

func (Created) Kind() string { return "created" }

type Envelope struct {
	Seq    int64             `cbor:"seq"`
	Event  Event             `cbor:"event"`
	Labels map[string]string `cbor:"labels"`
	Body   []byte            `cbor:"body"`
}

func serializer() (*typesys.Universe, func() []byte, func([]byte) (Envelope, error)) {
	u := typesys.New(typesys.WithoutBuildInfo())
	u.Add(reflect.TypeOf(Created{}))
	s := cborx.New(engine.TypesOnly("events", apis.CollisionThrow, u.TypeOf(Envelope{})), u)
	ctx := context.Background()
	in := Envelope{
		Seq:    -4,
		Event:  Created{ID: "e1", Size: 12},
		Labels: map[string]string{"z": "1", "a": "2", "m": "3"},
		Body:   []byte{9, 8, 7},
	}
	enc := func() []byte {
		b, err := s.Serialize(ctx, in)
		if err != nil {
			panic(err)
		}
		return b
	}
	dec := func(b []byte) (Envelope, error) {
		var out Envelope
		err := s.Deserialize(ctx, b, &out)
		return out, err
	}
	return u, enc, dec
}

func TestSerializer_RoundTripDeterministic(t *testing.T) {
	_, enc, dec := serializer()
	first := enc()
	for i := 0; i < 20; i++ {
		if !bytes.Equal(enc(), first) {
			t.Fatal("encoding is not deterministic")
		}
	}

	var generic map[string]any
	if err := cbor.Unmarshal(first, &generic); err != nil {
		t.Fatalf("cbor.Unmarshal: %v", err)
	}
	ev, ok := generic["event"].(map[any]any)
	if !ok || ev[cborx.TypeKey] != "dirpx.dev/serx/backend/cborx_test.Created" {
		t.Fatalf("event = %#v", generic["event"])
	}

	got, err := dec(first)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	want := Envelope{
		Seq:    -4,
		Event:  Created{ID: "e1", Size: 12},
		Labels: map[string]string{"z": "1", "a": "2", "m": "3"},
		Body:   []byte{9, 8, 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Deserialize = %#v", got)
	}
}

func TestFormat_Defaults(t *testing.T) {
	f := cborx.Format{}
	if f.DefaultPolicy() != apis.PolicyThrow || f.Name() != cborx.Name {
		t.Fatalf("Format = %s/%v", f.Name(), f.DefaultPolicy())
	}
	if _, err := f.Unmarshal([]byte{0xff}); err == nil {
		t.Fatal("Unmarshal accepted a break code")
	}
}
