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

package collision_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/collision"
	"dirpx.dev/serx/typesys"
)

type Order struct{}

func TestResolve(t *testing.T) {
	u := typesys.New(typesys.WithoutBuildInfo())
	order := typesys.For[Order](u)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := apis.RegistrationDetails{Descriptor: apis.DeclareAll(order), Owner: "billing", Sequence: 7, RegisteredAt: at}

	if got, err := collision.Resolve(order, existing, apis.CollisionSkip, "shop"); err != nil || got != collision.Skip {
		t.Fatalf("Skip = %s, %v", got, err)
	}
	if got, err := collision.Resolve(order, existing, apis.CollisionOverwrite, "shop"); err != nil || got != collision.Overwrite {
		t.Fatalf("Overwrite = %s, %v", got, err)
	}

	_, err := collision.Resolve(order, existing, apis.CollisionThrow, "shop")
	var ce *apis.CollisionError
	if !errors.As(err, &ce) || !apis.IsCollision(err) {
		t.Fatalf("Throw error = %v", err)
	}
	if ce.Owner != "billing" || ce.Attempted != "shop" || !ce.RegisteredAt.Equal(at) || ce.Sequence != 7 {
		t.Fatalf("collision error = %+v", ce)
	}
	if msg := err.Error(); !strings.Contains(msg, "Order") || !strings.Contains(msg, "billing") {
		t.Fatalf("collision message lacks type or owner: %s", msg)
	}

	for _, s := range []apis.CollisionStrategy{apis.CollisionInvalid, apis.CollisionStrategy(42)} {
		_, err := collision.Resolve(order, existing, s, "shop")
		if !apis.IsConfigurationError(err) || apis.IsCollision(err) {
			t.Fatalf("strategy %s error = %v", s, err)
		}
	}
}

func TestCollisionStrategy_Text(t *testing.T) {
	for _, s := range []apis.CollisionStrategy{apis.CollisionSkip, apis.CollisionThrow, apis.CollisionOverwrite} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%s): %v", s, err)
		}
		var back apis.CollisionStrategy
		if err := back.UnmarshalText(b); err != nil || back != s {
			t.Fatalf("UnmarshalText(%q) = %s, %v", b, back, err)
		}
	}
	if _, err := apis.CollisionInvalid.MarshalText(); err == nil {
		t.Fatalf("Invalid must not marshal")
	}
	for _, in := range []string{"", "invalid", "nope"} {
		if _, err := apis.ParseCollisionStrategy(in); err == nil {
			t.Fatalf("ParseCollisionStrategy(%q) must fail", in)
		}
	}
	if apis.MustParseCollisionStrategy(" OVERWRITE ") != apis.CollisionOverwrite {
		t.Fatalf("parse is case-insensitive and trims")
	}
}
