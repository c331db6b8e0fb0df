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

import (
	"fmt"
	"strings"
)

// MemberTypes selects which categories of member types closure expansion follows.
type MemberTypes uint8

const (
	// MemberTypesNone registers the type only.
	MemberTypesNone MemberTypes = 0
	// DeclaredProperties follows exported, declared struct fields.
	DeclaredProperties MemberTypes = 1 << iota
	// DeclaredFields follows unexported, declared struct fields.
	DeclaredFields
	// GenericArguments follows the type arguments of closed generic types.
	GenericArguments
	// ArrayElement follows the element type of slices, arrays and maps.
	ArrayElement
	// MemberTypesAll follows every category.
	MemberTypesAll = DeclaredProperties | DeclaredFields | GenericArguments | ArrayElement
)

// Has reports whether all bits of f are set in m.
func (m MemberTypes) Has(f MemberTypes) bool { return f != 0 && m&f == f }

// String renders the set flags joined by "|".
func (m MemberTypes) String() string {
	if m == MemberTypesNone {
		return "None"
	}
	if m == MemberTypesAll {
		return "All"
	}
	var parts []string
	for _, f := range []struct {
		bit  MemberTypes
		name string
	}{
		{DeclaredProperties, "DeclaredProperties"},
		{DeclaredFields, "DeclaredFields"},
		{GenericArguments, "GenericArguments"},
		{ArrayElement, "ArrayElement"},
	} {
		if m.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// RelatedTypes selects whether supertypes and subtypes are pulled in.
type RelatedTypes int

const (
	// RelatedNone pulls in no related types.
	RelatedNone RelatedTypes = iota
	// RelatedAncestors pulls in supertypes.
	RelatedAncestors
	// RelatedDescendants pulls in subtypes.
	RelatedDescendants
	// RelatedAncestorsAndDescendants pulls in both.
	RelatedAncestorsAndDescendants
	// RelatedDefault resolves per target type: abstract types resolve to
	// RelatedDescendants, everything else to RelatedNone.
	RelatedDefault
)

// String returns the name of r.
func (r RelatedTypes) String() string {
	switch r {
	case RelatedNone:
		return "None"
	case RelatedAncestors:
		return "Ancestors"
	case RelatedDescendants:
		return "Descendants"
	case RelatedAncestorsAndDescendants:
		return "AncestorsAndDescendants"
	case RelatedDefault:
		return "Default"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Ancestors reports whether supertypes are included.
func (r RelatedTypes) Ancestors() bool {
	return r == RelatedAncestors || r == RelatedAncestorsAndDescendants
}

// Descendants reports whether subtypes are included.
func (r RelatedTypes) Descendants() bool {
	return r == RelatedDescendants || r == RelatedAncestorsAndDescendants
}

// Resolve turns RelatedDefault into a concrete value for t.
func (r RelatedTypes) Resolve(t Type, in Introspector) RelatedTypes {
	if r != RelatedDefault {
		return r
	}
	if in != nil && in.IsAbstract(t) {
		return RelatedDescendants
	}
	return RelatedNone
}

// Reason tells how a descriptor came to exist.
type Reason int

const (
	// ReasonDeclared marks a type declared by a configuration.
	ReasonDeclared Reason = iota
	// ReasonAutoRegistered marks a discovery-only type declared by a configuration.
	ReasonAutoRegistered
	// ReasonGettingMemberTypes marks a type reached through a data member.
	ReasonGettingMemberTypes
	// ReasonGettingGenericArguments marks a type reached as a type argument.
	ReasonGettingGenericArguments
	// ReasonGettingArrayElement marks a type reached as a container element.
	ReasonGettingArrayElement
	// ReasonGettingAncestors marks a type reached as a supertype.
	ReasonGettingAncestors
	// ReasonGettingDescendants marks a type reached as a subtype.
	ReasonGettingDescendants
	// ReasonPostInitialization marks a closed generic registered after Configure.
	ReasonPostInitialization
)

// String returns the name of r.
func (r Reason) String() string {
	switch r {
	case ReasonDeclared:
		return "Declared"
	case ReasonAutoRegistered:
		return "AutoRegistered"
	case ReasonGettingMemberTypes:
		return "GettingMemberTypes"
	case ReasonGettingGenericArguments:
		return "GettingGenericArguments"
	case ReasonGettingArrayElement:
		return "GettingArrayElement"
	case ReasonGettingAncestors:
		return "GettingAncestors"
	case ReasonGettingDescendants:
		return "GettingDescendants"
	case ReasonPostInitialization:
		return "PostInitialization"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Augmentation carries backend-specific handling for one declared type.
// A converter or a whitelist replaces member-driven handling of the type.
type Augmentation struct {
	// Converter serializes the type as a whole.
	Converter Converter
	// PropertyWhitelist restricts which members are written.
	PropertyWhitelist []string
}

// Custom reports whether a carries a converter or a whitelist.
func (a *Augmentation) Custom() bool {
	return a != nil && (a.Converter != nil || len(a.PropertyWhitelist) > 0)
}

// Clone returns a copy of a. Converters are shared.
func (a *Augmentation) Clone() *Augmentation {
	if a == nil {
		return nil
	}
	c := &Augmentation{Converter: a.Converter}
	if len(a.PropertyWhitelist) > 0 {
		c.PropertyWhitelist = append([]string(nil), a.PropertyWhitelist...)
	}
	return c
}

// TypeDescriptor identifies a type to register and how to expand it.
// Descriptors are values; the engine never mutates one after creation.
type TypeDescriptor struct {
	// Type is the type considered for registration.
	Type Type
	// RecursiveOrigin is the type whose recursive expansion produced this descriptor.
	RecursiveOrigin Type
	// DirectOrigin is the type whose single expansion step produced this descriptor.
	DirectOrigin Type
	// MemberTypes selects which member categories are followed.
	MemberTypes MemberTypes
	// RelatedTypes selects supertypes/subtypes.
	RelatedTypes RelatedTypes
	// Reason tells how the descriptor was reached.
	Reason Reason
	// Augmentation is the optional backend handling of Type.
	Augmentation *Augmentation
}

// Declare returns an originating descriptor for t.
func Declare(t Type, members MemberTypes, related RelatedTypes) TypeDescriptor {
	return TypeDescriptor{
		Type:            t,
		RecursiveOrigin: t,
		DirectOrigin:    t,
		MemberTypes:     members,
		RelatedTypes:    related,
		Reason:          ReasonDeclared,
	}
}

// DeclareAll returns an originating descriptor following every member category
// and resolving related types per target.
func DeclareAll(t Type) TypeDescriptor {
	return Declare(t, MemberTypesAll, RelatedDefault)
}

// DeclareCustom returns an originating descriptor for t handled by aug.
func DeclareCustom(t Type, aug *Augmentation) TypeDescriptor {
	d := Declare(t, MemberTypesNone, RelatedNone)
	d.Augmentation = aug
	return d
}

// IsOriginating reports whether the descriptor was declared rather than discovered.
func (d TypeDescriptor) IsOriginating() bool {
	return d.Type == d.RecursiveOrigin && d.Type == d.DirectOrigin
}

// Spawn derives the descriptor of a type reached from d in one expansion step.
// The child keeps d's recursive origin and expansion policy; augmentations
// belong to the declared type and are not inherited.
func (d TypeDescriptor) Spawn(t Type, reason Reason) TypeDescriptor {
	return TypeDescriptor{
		Type:            t,
		RecursiveOrigin: d.RecursiveOrigin,
		DirectOrigin:    d.Type,
		MemberTypes:     d.MemberTypes,
		RelatedTypes:    d.RelatedTypes,
		Reason:          reason,
	}
}

// Validate checks the descriptor invariants.
func (d TypeDescriptor) Validate() error {
	if d.Type == nil || d.RecursiveOrigin == nil || d.DirectOrigin == nil {
		return &ConfigurationError{Op: "descriptor", Err: ErrNilType}
	}
	if d.Augmentation.Custom() && (d.MemberTypes != MemberTypesNone || d.RelatedTypes != RelatedNone) {
		return &ConfigurationError{
			Op:   "descriptor",
			Type: d.Type,
			Err:  fmt.Errorf("custom converter or whitelist requires MemberTypes=None and RelatedTypes=None, got %s/%s", d.MemberTypes, d.RelatedTypes),
		}
	}
	return nil
}

// String renders the descriptor for diagnostics.
func (d TypeDescriptor) String() string {
	name := func(t Type) string {
		if t == nil {
			return "<nil>"
		}
		return t.FullName()
	}
	return fmt.Sprintf("%s (reason=%s direct=%s recursive=%s members=%s related=%s)",
		name(d.Type), d.Reason, name(d.DirectOrigin), name(d.RecursiveOrigin), d.MemberTypes, d.RelatedTypes)
}
