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

package typesys

import (
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/typename"
)

// rtype is the handle of a concrete Go type.
type rtype struct {
	rt reflect.Type
}

var _ apis.Type = rtype{}

func (t rtype) Name() string {
	if t.rt.Name() != "" && t.rt.PkgPath() == "" {
		return t.rt.Name()
	}
	return typename.Shorten(t.FullName())
}

func (t rtype) FullName() string { return fullName(t.rt) }

func (t rtype) PkgPath() string {
	if t.rt.Name() != "" {
		return t.rt.PkgPath()
	}
	return ""
}

func (t rtype) Kind() apis.Kind { return kindOf(t.rt) }

func (t rtype) String() string { return t.FullName() }

// fullName spells rt the way the linker names type arguments, with package
// paths instead of package names.
func fullName(rt reflect.Type) string {
	if rt.Name() != "" {
		if rt.PkgPath() == "" {
			return rt.Name()
		}
		return rt.PkgPath() + "." + rt.Name()
	}
	switch rt.Kind() {
	case reflect.Ptr:
		return "*" + fullName(rt.Elem())
	case reflect.Slice:
		return "[]" + fullName(rt.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", rt.Len(), fullName(rt.Elem()))
	case reflect.Map:
		return "map[" + fullName(rt.Key()) + "]" + fullName(rt.Elem())
	default:
		return rt.String()
	}
}

func kindOf(rt reflect.Type) apis.Kind {
	if rt.Name() == "" {
		switch rt.Kind() {
		case reflect.Ptr:
			return apis.KindPointer
		case reflect.Slice:
			return apis.KindSlice
		case reflect.Array:
			return apis.KindArray
		case reflect.Map:
			return apis.KindMap
		default:
			return apis.KindInvalid
		}
	}
	if rt.PkgPath() == "" {
		return apis.KindBasic
	}
	switch rt.Kind() {
	case reflect.Struct:
		return apis.KindStruct
	case reflect.Interface:
		return apis.KindInterface
	default:
		return apis.KindNamed
	}
}

// genericDef is the handle of an open generic definition. Go exposes generic
// types only through their instantiations, so a definition is identified by
// package, identifier and arity.
type genericDef struct {
	pkg   string
	ident string
	arity int
}

var _ apis.Type = genericDef{}

func (d genericDef) Name() string {
	return d.ident + "[" + strings.TrimSuffix(strings.Repeat("_,", d.arity), ",") + "]"
}

func (d genericDef) FullName() string { return d.pkg + "." + d.Name() }

func (d genericDef) PkgPath() string { return d.pkg }

func (d genericDef) Kind() apis.Kind { return apis.KindGenericDefinition }

func (d genericDef) String() string { return d.FullName() }

// definitionOf returns the definition of a closed generic type name.
func definitionOf(rt reflect.Type) (genericDef, typename.Name, bool) {
	if rt.Name() == "" || rt.PkgPath() == "" || !strings.Contains(rt.Name(), "[") {
		return genericDef{}, typename.Name{}, false
	}
	n, err := typename.Parse(fullName(rt))
	if err != nil || n.Arity() == 0 {
		return genericDef{}, typename.Name{}, false
	}
	return genericDef{pkg: n.Pkg, ident: n.Ident, arity: n.Arity()}, n, true
}
