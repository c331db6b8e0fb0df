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
	"time"

	"github.com/go-openapi/strfmt"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/converter"
	"dirpx.dev/serx/engine"
)

// InternalSpecName is the key of the spec every backend depends on by default.
const InternalSpecName = "serx.internal"

// Internal returns the spec of the types every configuration needs handled
// the same way: time values use the date-time converter.
func Internal(ts TypeSystem) *engine.Spec {
	dt := converter.DateTime()
	var types []apis.TypeDescriptor
	for _, rt := range []reflect.Type{
		reflect.TypeOf(time.Time{}),
		reflect.TypeOf(strfmt.DateTime{}),
	} {
		types = append(types, apis.DeclareCustom(ts.Of(rt), &apis.Augmentation{Converter: dt}))
	}
	return engine.NewSpec(InternalSpecName, apis.CollisionSkip,
		engine.WithoutDefaultDependencies(),
		engine.WithTypes(types...),
	)
}
