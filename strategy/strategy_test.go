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

package strategy_test

import (
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/strategy"
	"dirpx.dev/serx/typename"
	"dirpx.dev/serx/typesys"
)

type Order struct{ ID string }

type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// scope is a NameScope over a universe and a fixed simple-name table.
type scope struct {
	u      *typesys.Universe
	match  apis.VersionMatchStrategy
	simple map[string][]apis.Type
	chain  []apis.NameStrategy
}

func (s *scope) Introspector() apis.Introspector             { return s.u }
func (s *scope) VersionMatch() apis.VersionMatchStrategy     { return s.match }
func (s *scope) RegisteredBySimpleName(n string) []apis.Type { return s.simple[n] }

func (s *scope) Resolve(n typename.Name) (apis.Type, error) {
	for _, st := range s.chain {
		t, ok, err := st.TryResolve(n, s)
		if ok || err != nil {
			return t, err
		}
	}
	return nil, &apis.ResolutionError{Name: n.String()}
}

func newScope() *scope {
	u := typesys.New(typesys.WithoutBuildInfo(), typesys.WithModuleVersion("dirpx.dev/serx", "v1.4.0"))
	u.Add(reflect.TypeOf(0), reflect.TypeOf(Order{}), reflect.TypeOf(Pair[string, Order]{}))
	def, _ := u.DefinitionOf(reflect.TypeOf(Pair[string, Order]{}))
	return &scope{
		u:     u,
		match: apis.MatchAnySingleVersion,
		simple: map[string][]apis.Type{
			"Order":     {u.TypeOf(Order{})},
			"Pair[_,_]": {def},
		},
		chain: []apis.NameStrategy{
			strategy.NewQualifiedStrategy(),
			strategy.NewLegacyStrategy(),
			strategy.NewBuiltinStrategy(),
			strategy.NewGenericStrategy(),
		},
	}
}

func TestStrategies_Handling(t *testing.T) {
	s := newScope()
	order := s.u.TypeOf(Order{})
	pair := s.u.TypeOf(Pair[string, Order]{})
	full := order.FullName()

	tests := []struct {
		strategy apis.NameStrategy
		token    string
		want     apis.Type
		handled  bool
		err      bool
	}{
		{strategy.NewQualifiedStrategy(), full, order, true, false},
		{strategy.NewQualifiedStrategy(), full + "@v1.9.9", order, true, false},
		{strategy.NewQualifiedStrategy(), "example.com/none.Order", nil, true, true},
		{strategy.NewQualifiedStrategy(), "Order", nil, false, false},

		{strategy.NewLegacyStrategy(), "Order", order, true, false},
		{strategy.NewLegacyStrategy(), "Invoice", nil, false, false},
		{strategy.NewLegacyStrategy(), full + "@v9.0.0", order, true, false},
		{strategy.NewLegacyStrategy(), "example.com/renamed.Order", order, true, false},

		{strategy.NewBuiltinStrategy(), "int", s.u.TypeOf(0), true, false},
		{strategy.NewBuiltinStrategy(), "Order", nil, false, false},
		{strategy.NewBuiltinStrategy(), "Pair[int,int]", nil, false, false},

		{strategy.NewGenericStrategy(), "Pair[string,Order]", pair, true, false},
		{strategy.NewGenericStrategy(), "Pair[string,Invoice]", nil, true, true},
		{strategy.NewGenericStrategy(), "Pair[string,int]", nil, true, true},
		{strategy.NewGenericStrategy(), "Triple[int,int,int]", nil, false, false},
		{strategy.NewGenericStrategy(), "Order", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.Name()+"/"+tt.token, func(t *testing.T) {
			got, handled, err := tt.strategy.TryResolve(typename.MustParse(tt.token), s)
			if handled != tt.handled || (err != nil) != tt.err {
				t.Fatalf("TryResolve = %v, %v, %v", got, handled, err)
			}
			if got != tt.want {
				t.Fatalf("TryResolve type = %v, want %v", got, tt.want)
			}
			if err != nil && !errors.Is(err, apis.ErrTypeResolution) {
				t.Fatalf("err = %v, want a resolution error", err)
			}
		})
	}
}

func TestQualified_VersionMatch(t *testing.T) {
	s := newScope()
	full := s.u.TypeOf(Order{}).FullName()
	q := strategy.NewQualifiedStrategy()

	s.match = apis.MatchSameMajor
	if _, ok, err := q.TryResolve(typename.MustParse(full+"@v1.0.0"), s); !ok || err != nil {
		t.Fatalf("same major: %v, %v", ok, err)
	}
	if _, ok, err := q.TryResolve(typename.MustParse(full+"@v2.0.0"), s); !ok || err == nil {
		t.Fatalf("other major: %v, %v", ok, err)
	}
	s.match = apis.MatchExact
	if _, _, err := q.TryResolve(typename.MustParse(full+"@v1.4.1"), s); err == nil {
		t.Fatal("exact match accepted another patch version")
	}
}

func TestLegacy_Ambiguous(t *testing.T) {
	s := newScope()
	s.simple["Order"] = append(s.simple["Order"], s.u.TypeOf(0))
	_, ok, err := strategy.NewLegacyStrategy().TryResolve(typename.MustParse("Order"), s)
	var re *apis.ResolutionError
	if !ok || !errors.As(err, &re) || len(re.Candidates) != 2 {
		t.Fatalf("TryResolve = %v, %v", ok, err)
	}
}

func TestNames(t *testing.T) {
	got := []string{
		strategy.NewQualifiedStrategy().Name(),
		strategy.NewLegacyStrategy().Name(),
		strategy.NewBuiltinStrategy().Name(),
		strategy.NewGenericStrategy().Name(),
	}
	want := []string{"qualified", "legacy", "builtin", "generic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v", got)
	}
}
