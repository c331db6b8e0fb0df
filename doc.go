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

// Package serx registers the types a serialization backend may read and
// write, and resolves the type names it finds in serialized payloads.
//
// A configuration is described by an engine.Spec: the types to register,
// how to expand them into their closure (members, generic arguments,
// ancestors, descendants), which other specs it depends on, what to do when
// the same type is registered twice and what to do when an unregistered type
// shows up at run time. Binding a spec to a backend yields a
// backend.Serializer whose configuration is built once, on first use.
//
// # Backends
//
// Three formats share one reflective walker:
//
//   - JSON, with a {"$type": ..., "$value": ...} envelope at interface
//     positions. Unregistered types are attempted by default.
//   - BSON, with an inline "_t" discriminator. Unregistered types are
//     rejected by default.
//   - CBOR in core deterministic encoding, with a {"t": ..., "v": ...}
//     envelope. Unregistered types are rejected by default.
//
// # Design
//
// Like the rest of the DIRPX libraries the package keeps a read-mostly
// global snapshot (state) behind an atomic pointer:
//
//   - Settings: log level and format, the collision strategy, the
//     unregistered-type policy and the version matching used by specs
//     built with NewSpec.
//
//   - Universe: the reflect-backed type system that every process-wide
//     serializer introspects.
//
//   - Builder and Resolver: the name-strategy chain used to turn a
//     serialized type name back into a type. Swapping the Builder lets a
//     binary put its own strategies in front of the standard ones.
//
//   - Logger and Metrics handed to every serializer created afterwards.
//
// Readers load the pointer and never mutate what they get. Writers take a
// short build mutex, assemble a new snapshot and publish it.
//
// # Global API
//
//	ser, err := serx.Configured(serx.JSON, spec)
//	data, err := ser.Serialize(ctx, v)
//	err = ser.Deserialize(ctx, data, &out)
//
// For returns one serializer per backend kind and spec name for the life of
// the process. Reset drops them all and is meant for tests.
package serx
