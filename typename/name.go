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

// Package typename parses and formats serialized type-name tokens.
//
// A token names a Go type the way the reflect package spells it, optionally
// followed by a module version qualifier:
//
//	example.com/shop/model.Order
//	example.com/shop/model.Page[example.com/shop/model.Order]@v1.4.0
//	Order                      (legacy short form)
//	Page[Order]                (legacy short generic form)
//
// Unnamed composite arguments such as "[]int" or "map[string]x.Y" are kept
// verbatim as raw names.
package typename

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmpty is returned for blank tokens.
	ErrEmpty = errors.New("typename: empty name")
	// ErrSyntax is returned for malformed tokens.
	ErrSyntax = errors.New("typename: malformed name")
)

// Name is a parsed type-name token.
type Name struct {
	// Pkg is the package path, empty for short and predeclared names.
	Pkg string
	// Ident is the type identifier without arguments.
	Ident string
	// Args are the type arguments of a generic instantiation.
	Args []Name
	// Raw holds an unnamed composite type spelled verbatim. When set, the other fields are empty.
	Raw string
	// Version is the module version qualifier, without the "@".
	Version string
}

// Parse parses s into a Name.
func Parse(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Name{}, ErrEmpty
	}
	body, version, err := splitVersion(s)
	if err != nil {
		return Name{}, err
	}
	n, err := parseBody(body)
	if err != nil {
		return Name{}, err
	}
	n.Version = version
	return n, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func splitVersion(s string) (string, string, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '@':
			if depth == 0 {
				v := strings.TrimSpace(s[i+1:])
				if v == "" {
					return "", "", fmt.Errorf("%w: empty version in %q", ErrSyntax, s)
				}
				return strings.TrimSpace(s[:i]), v, nil
			}
		}
	}
	return s, "", nil
}

func parseBody(s string) (Name, error) {
	if isRaw(s) {
		return Name{Raw: s}, nil
	}
	open := strings.IndexByte(s, '[')
	head := s
	var args []Name
	if open >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Name{Raw: s}, nil
		}
		head = s[:open]
		parts, err := splitArgs(s[open+1 : len(s)-1])
		if err != nil {
			return Name{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
		}
		for _, p := range parts {
			a, err := parseBody(p)
			if err != nil {
				return Name{}, err
			}
			args = append(args, a)
		}
	}
	pkg, ident := splitQualified(head)
	if !isIdent(ident) {
		return Name{}, fmt.Errorf("%w: invalid identifier %q in %q", ErrSyntax, ident, s)
	}
	return Name{Pkg: pkg, Ident: ident, Args: args}, nil
}

func isRaw(s string) bool {
	if strings.HasPrefix(s, "*") || strings.HasPrefix(s, "[") {
		return true
	}
	for _, kw := range []string{"map[", "func(", "chan ", "<-chan", "chan<-", "struct {", "struct{", "interface {", "interface{"} {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}

// splitQualified splits "example.com/m/model.Foo" into its package path and identifier.
func splitQualified(head string) (string, string) {
	slash := strings.LastIndexByte(head, '/')
	dot := strings.LastIndexByte(head[slash+1:], '.')
	if dot < 0 {
		return "", head
	}
	dot += slash + 1
	return head[:dot], head[dot+1:]
}

func splitArgs(s string) ([]string, error) {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced brackets")
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced brackets")
	}
	out = append(out, strings.TrimSpace(s[start:]))
	for _, p := range out {
		if p == "" {
			return nil, errors.New("empty type argument")
		}
	}
	return out, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// Qualified reports whether the name carries a package path.
func (n Name) Qualified() bool { return n.Pkg != "" }

// IsRaw reports whether the name is an unnamed composite spelled verbatim.
func (n Name) IsRaw() bool { return n.Raw != "" }

// Arity returns the number of type arguments.
func (n Name) Arity() int { return len(n.Args) }

// Base returns the package-qualified identifier without arguments or version.
func (n Name) Base() string {
	if n.Pkg == "" {
		return n.Ident
	}
	return n.Pkg + "." + n.Ident
}

// String formats the full token, including the version qualifier.
func (n Name) String() string {
	s := n.Unversioned()
	if n.Version != "" {
		s += "@" + n.Version
	}
	return s
}

// Unversioned formats the full token without the version qualifier.
func (n Name) Unversioned() string {
	if n.Raw != "" {
		return n.Raw
	}
	if len(n.Args) == 0 {
		return n.Base()
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.Unversioned()
	}
	return n.Base() + "[" + strings.Join(args, ",") + "]"
}

// Short formats the legacy form: no package paths, no version.
func (n Name) Short() string {
	if n.Raw != "" {
		return ShortenRaw(n.Raw)
	}
	if len(n.Args) == 0 {
		return n.Ident
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.Short()
	}
	return n.Ident + "[" + strings.Join(args, ",") + "]"
}

var qualifiedIdent = regexp.MustCompile(`(?:[\w\-~]+[./])+(\w+)`)

// ShortenRaw strips package qualifiers from a verbatim composite type.
func ShortenRaw(s string) string {
	return qualifiedIdent.ReplaceAllString(s, "$1")
}

// Shorten returns the legacy form of a full token, or the token itself with
// qualifiers stripped when it does not parse.
func Shorten(full string) string {
	n, err := Parse(full)
	if err != nil {
		return ShortenRaw(full)
	}
	return n.Short()
}
