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

package resolver_test

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/builder"
	"dirpx.dev/serx/engine"
	"dirpx.dev/serx/metrics"
	"dirpx.dev/serx/resolver"
	"dirpx.dev/serx/typesys"
)

type Order struct{ ID string }

type Page[T any] struct{ Items []T }

type Unlisted struct{}

// Spec shares its simple name with engine.Spec.
type Spec struct{}

type backend struct{ policy apis.UnregisteredTypePolicy }

func (backend) Name() string                                 { return "test" }
func (backend) RegisterType(apis.TypeDescriptor) error       { return nil }
func (b backend) DefaultPolicy() apis.UnregisteredTypePolicy { return b.policy }
func (backend) DefaultDependencies() []*engine.Spec          { return nil }

func universe() *typesys.Universe {
	u := typesys.New(typesys.WithoutBuildInfo(), typesys.WithModuleVersion("dirpx.dev/serx", "v1.2.0"))
	u.Add(
		reflect.TypeOf(Order{}),
		reflect.TypeOf(Page[Order]{}),
		reflect.TypeOf(Unlisted{}),
		reflect.TypeOf(Spec{}),
		reflect.TypeOf(engine.Spec{}),
	)
	return u
}

func configuration(t *testing.T, u *typesys.Universe, opts ...engine.SpecOption) *engine.Configuration {
	t.Helper()
	def, ok := u.DefinitionOf(reflect.TypeOf(Page[Order]{}))
	if !ok {
		t.Fatal("Page has no definition")
	}
	base := []engine.SpecOption{
		engine.WithTypes(
			apis.DeclareAll(u.TypeOf(Order{})),
			apis.DeclareAll(def),
			apis.Declare(u.TypeOf(Spec{}), apis.MemberTypesNone, apis.RelatedNone),
			apis.Declare(u.TypeOf(engine.Spec{}), apis.MemberTypesNone, apis.RelatedNone),
		),
		engine.WithUnregisteredTypePolicy(apis.PolicyThrow),
	}
	spec := engine.NewSpec("shop", apis.CollisionThrow, append(base, opts...)...)
	c := engine.New(spec, backend{policy: apis.PolicyThrow}, u)
	if err := c.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return c
}

func TestResolveType_NoScope(t *testing.T) {
	a := builder.New().BuildResolver()
	if _, err := a.ResolveType(context.Background(), "Order"); !errors.Is(err, apis.ErrNoActiveConfiguration) {
		t.Fatalf("err = %v, want ErrNoActiveConfiguration", err)
	}
}

func TestResolveType_Chain(t *testing.T) {
	u := universe()
	c := configuration(t, u)
	a := builder.New().BuildResolver()
	ctx := resolver.Enter(context.Background(), c)

	order := u.TypeOf(Order{})
	cases := []struct {
		name  string
		token string
		want  apis.Type
	}{
		{"qualified", order.FullName(), order},
		{"qualified any version", order.FullName() + "@v9.0.0", order},
		{"legacy", "Order", order},
		{"builtin string", "string", u.TypeOf("")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := a.ResolveType(ctx, tc.token)
			if err != nil {
				t.Fatalf("ResolveType(%q): %v", tc.token, err)
			}
			if got != tc.want {
				t.Fatalf("ResolveType(%q) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestResolveType_Failures(t *testing.T) {
	u := universe()
	c := configuration(t, u)
	a := builder.New().BuildResolver()
	ctx := resolver.Enter(context.Background(), c)

	for _, token := range []string{"", "Page[", "Nope", "dirpx.dev/serx/resolver_test.Nope", "[]int"} {
		if _, err := a.ResolveType(ctx, token); !errors.Is(err, apis.ErrTypeResolution) {
			t.Fatalf("ResolveType(%q) err = %v, want ErrTypeResolution", token, err)
		}
	}

	_, err := a.ResolveType(ctx, "Spec")
	var re *apis.ResolutionError
	if !errors.As(err, &re) || len(re.Candidates) != 2 {
		t.Fatalf("ambiguous short name: err = %v", err)
	}

	// Resolvable but not registered: the policy decides.
	if _, err := a.ResolveType(ctx, "int"); !apis.IsUnregisteredType(err) {
		t.Fatalf("int: err = %v, want unregistered type", err)
	}
	if _, err := a.ResolveType(ctx, u.TypeOf(Unlisted{}).FullName()); !apis.IsUnregisteredType(err) {
		t.Fatalf("Unlisted: err = %v, want unregistered type", err)
	}
}

func TestResolveType_VersionMatch(t *testing.T) {
	u := universe()
	full := u.TypeOf(Unlisted{}).FullName()

	cases := []struct {
		match   apis.VersionMatchStrategy
		version string
		ok      bool
	}{
		{apis.MatchExact, "v1.2.0", true},
		{apis.MatchExact, "v1.3.0", false},
		{apis.MatchSameMajor, "v1.9.1", true},
		{apis.MatchSameMajor, "v2.0.0", false},
		{apis.MatchAnySingleVersion, "v7.0.0", true},
	}
	a := builder.New().BuildResolver()
	for _, tc := range cases {
		c := configuration(t, u, engine.WithVersionMatch(tc.match), engine.WithUnregisteredTypePolicy(apis.PolicyAttempt))
		ctx := resolver.Enter(context.Background(), c)
		_, err := a.ResolveType(ctx, full+"@"+tc.version)
		if (err == nil) != tc.ok {
			t.Fatalf("%s %s: err = %v, want ok=%v", tc.match, tc.version, err, tc.ok)
		}
		if err != nil && !errors.Is(err, apis.ErrTypeResolution) {
			t.Fatalf("%s %s: err = %v, want a resolution error", tc.match, tc.version, err)
		}
	}
}

// A qualified token that no longer resolves falls back to the registered
// simple name.
func TestResolveType_QualifiedFallsBackToLegacy(t *testing.T) {
	u := universe()
	c := configuration(t, u, engine.WithVersionMatch(apis.MatchExact))
	a := builder.New().BuildResolver()
	ctx := resolver.Enter(context.Background(), c)
	order := u.TypeOf(Order{})

	for _, token := range []string{order.FullName() + "@v0.9.0", "example.com/legacy/shop.Order"} {
		got, err := a.ResolveType(ctx, token)
		if err != nil || got != order {
			t.Fatalf("ResolveType(%q) = %v, %v; want %v", token, got, err, order)
		}
	}
}

func TestResolveType_ShortGenericRegistersClosedType(t *testing.T) {
	u := universe()
	reg := prometheus.NewRegistry()
	m, err := metrics.NewCollector("resolvertest", reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	def, _ := u.DefinitionOf(reflect.TypeOf(Page[Order]{}))
	spec := engine.NewSpec("shop", apis.CollisionThrow,
		engine.WithTypes(apis.DeclareAll(u.TypeOf(Order{})), apis.DeclareAll(def)),
		engine.WithUnregisteredTypePolicy(apis.PolicyThrow))
	c := engine.New(spec, backend{}, u, engine.WithMetrics(m))
	ctx := resolver.Enter(context.Background(), c)
	a := builder.New().BuildResolver()

	closed := u.TypeOf(Page[Order]{})
	got, err := a.ResolveType(ctx, "Page[Order]")
	if err != nil || got != closed {
		t.Fatalf("ResolveType = %v, %v; want %v", got, err, closed)
	}
	d, ok := c.Lookup(closed)
	if !ok || d.Descriptor.Reason != apis.ReasonPostInitialization || d.Descriptor.DirectOrigin != def {
		t.Fatalf("closed generic registration = %+v, %v", d, ok)
	}

	// Now registered under its own simple name.
	if got, err := a.ResolveType(ctx, "Page[Order]"); err != nil || got != closed {
		t.Fatalf("second ResolveType = %v, %v", got, err)
	}
	expected := `
# HELP resolvertest_resolver_resolutions_total Serialized type names resolved, by winning strategy.
# TYPE resolvertest_resolver_resolutions_total counter
resolvertest_resolver_resolutions_total{strategy="generic"} 1
resolvertest_resolver_resolutions_total{strategy="legacy"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "resolvertest_resolver_resolutions_total"); err != nil {
		t.Fatal(err)
	}
}

func TestResolveType_ConcurrentConfigurationsAreIsolated(t *testing.T) {
	u := universe()
	strict := configuration(t, u)
	lenient := configuration(t, u, engine.WithUnregisteredTypePolicy(apis.PolicyAttempt))
	a := builder.New().BuildResolver()
	token := u.TypeOf(Unlisted{}).FullName()

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0) * 4
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			strictCtx := resolver.Enter(context.Background(), strict)
			lenientCtx := resolver.Enter(context.Background(), lenient)
			for i := 0; i < 500; i++ {
				if id%2 == 0 {
					if _, err := a.ResolveType(strictCtx, token); !apis.IsUnregisteredType(err) {
						t.Errorf("strict: err = %v", err)
						return
					}
				} else if _, err := a.ResolveType(lenientCtx, token); err != nil {
					t.Errorf("lenient: err = %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestEnter_Nesting(t *testing.T) {
	u := universe()
	outer := configuration(t, u)
	inner := configuration(t, u)

	ctx := resolver.Enter(context.Background(), outer)
	nested := resolver.Enter(ctx, inner)
	if got, _ := resolver.From(nested); got != inner {
		t.Fatal("nested scope does not win")
	}
	if got, _ := resolver.From(ctx); got != outer {
		t.Fatal("outer scope changed")
	}
	if _, ok := resolver.From(context.Background()); ok {
		t.Fatal("empty context has a scope")
	}
	if resolver.Enter(ctx, nil) != ctx {
		t.Fatal("Enter(nil) must return ctx unchanged")
	}
}

func TestTypeName(t *testing.T) {
	u := universe()
	a := builder.New().BuildResolver()
	order := u.TypeOf(Order{})

	if got := a.TypeName(configuration(t, u), order); got != order.FullName() {
		t.Fatalf("TypeName = %q", got)
	}
	exact := configuration(t, u, engine.WithVersionMatch(apis.MatchExact))
	if got, want := a.TypeName(exact, order), order.FullName()+"@v1.2.0"; got != want {
		t.Fatalf("TypeName = %q, want %q", got, want)
	}
	if got := a.TypeName(nil, nil); got != "" {
		t.Fatalf("TypeName(nil) = %q", got)
	}
}
