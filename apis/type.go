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

package apis

import "fmt"

// Kind classifies a Type the way the engine cares about it.
type Kind int

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindBasic is a predeclared type (bool, string, numbers).
	KindBasic
	// KindStruct is a named struct type.
	KindStruct
	// KindInterface is a named interface type.
	KindInterface
	// KindPointer is an unnamed pointer type.
	KindPointer
	// KindSlice is a slice type.
	KindSlice
	// KindArray is an array type.
	KindArray
	// KindMap is a map type.
	KindMap
	// KindNamed is any other named type (enums over ints, named funcs, ...).
	KindNamed
	// KindGenericDefinition is a generic type without type arguments.
	KindGenericDefinition
)

// String returns the Kind's name.
func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindPointer:
		return "pointer"
	case KindSlice:
		return "slice"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindNamed:
		return "named"
	case KindGenericDefinition:
		return "generic-definition"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Container reports whether k is an unnamed container the engine looks through.
func (k Kind) Container() bool {
	return k == KindPointer || k == KindSlice || k == KindArray || k == KindMap
}

// Type is an opaque, comparable handle to a type known to an Introspector.
// Two handles describing the same type compare equal, so Type is usable as a map key.
type Type interface {
	// Name is the simple name, without package qualification ("Foo", "List[Foo]").
	Name() string
	// FullName is the package-qualified name ("example.com/m/model.Foo").
	FullName() string
	// PkgPath is the declaring package path, empty for predeclared and unnamed types.
	PkgPath() string
	// Kind classifies the type.
	Kind() Kind
	// String returns FullName.
	String() string
}

// Member is one declared data member of a struct type.
type Member struct {
	// Name is the field name.
	Name string
	// Type is the declared field type.
	Type Type
	// Exported marks a "property" (exported field) as opposed to a plain field.
	Exported bool
}

// StringTypeName is the full name of the predeclared string type.
const StringTypeName = "string"

// IsString reports whether t is the predeclared string type.
func IsString(t Type) bool {
	return t != nil && t.Kind() == KindBasic && t.FullName() == StringTypeName
}

// IsIntrinsic reports whether t never needs registration to be handled by a
// backend: predeclared types and standard library types.
func IsIntrinsic(t Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == KindBasic {
		return true
	}
	return IsStdPkg(t.PkgPath())
}

// IsStdPkg reports whether pkg looks like a standard library import path
// (its first element carries no dot). Package main is never standard.
func IsStdPkg(pkg string) bool {
	if pkg == "" || pkg == "main" {
		return false
	}
	first := pkg
	for i := 0; i < len(pkg); i++ {
		if pkg[i] == '/' {
			first = pkg[:i]
			break
		}
	}
	for i := 0; i < len(first); i++ {
		if first[i] == '.' {
			return false
		}
	}
	return true
}
