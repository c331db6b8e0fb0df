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

package typename_test

import (
	"errors"
	"testing"

	"dirpx.dev/serx/typename"
)

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in        string
		pkg       string
		ident     string
		arity     int
		version   string
		short     string
		qualified bool
	}{
		{"example.com/shop/model.Order", "example.com/shop/model", "Order", 0, "", "Order", true},
		{"example.com/shop/model.Order@v1.4.0", "example.com/shop/model", "Order", 0, "v1.4.0", "Order", true},
		{"Order", "", "Order", 0, "", "Order", false},
		{"int", "", "int", 0, "", "int", false},
		{"gopkg.in/yaml.v3.Node", "gopkg.in/yaml.v3", "Node", 0, "", "Node", true},
		{"example.com/m.Page[example.com/m.Order]", "example.com/m", "Page", 1, "", "Page[Order]", true},
		{"example.com/m.Pair[string,example.com/m.Order]@v2.0.0", "example.com/m", "Pair", 2, "v2.0.0", "Pair[string,Order]", true},
		{"Page[Order]", "", "Page", 1, "", "Page[Order]", false},
		{"example.com/m.Page[[]example.com/m.Order]", "example.com/m", "Page", 1, "", "Page[[]Order]", true},
		{"example.com/m.Page[map[string]*example.com/m.Order]", "example.com/m", "Page", 1, "", "Page[map[string]*Order]", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			n, err := typename.Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.in, err)
			}
			if n.Pkg != tc.pkg || n.Ident != tc.ident || n.Arity() != tc.arity || n.Version != tc.version {
				t.Fatalf("Parse(%q) = %+v", tc.in, n)
			}
			if got := n.Short(); got != tc.short {
				t.Fatalf("Short() = %q, want %q", got, tc.short)
			}
			if n.Qualified() != tc.qualified {
				t.Fatalf("Qualified() = %v, want %v", n.Qualified(), tc.qualified)
			}
			if got := n.String(); got != tc.in {
				t.Fatalf("String() = %q, want round trip of %q", got, tc.in)
			}
		})
	}
}

func TestParse_RawArguments(t *testing.T) {
	n := typename.MustParse("example.com/m.Page[[]int]")
	if len(n.Args) != 1 || !n.Args[0].IsRaw() || n.Args[0].Raw != "[]int" {
		t.Fatalf("raw argument not preserved: %+v", n.Args)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", typename.ErrEmpty},
		{"   ", typename.ErrEmpty},
		{"example.com/m.Order@", typename.ErrSyntax},
		{"example.com/m.Page[]", typename.ErrSyntax},
		{"example.com/m.Page[a,,b]", typename.ErrSyntax},
		{"example.com/m.1Order", typename.ErrSyntax},
		{"example.com/m.Page[x]]", typename.ErrSyntax},
	}
	for _, tc := range cases {
		if _, err := typename.Parse(tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("Parse(%q) error = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestShorten(t *testing.T) {
	cases := map[string]string{
		"example.com/m/model.Order":                      "Order",
		"[]example.com/m/model.Order":                    "[]Order",
		"map[string]example.com/m/model.Order":           "map[string]Order",
		"example.com/m.Page[*example.com/m/model.Order]": "Page[*Order]",
	}
	for in, want := range cases {
		if got := typename.Shorten(in); got != want {
			t.Fatalf("Shorten(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustParse(\"\") did not panic")
		}
	}()
	_ = typename.MustParse("")
}
