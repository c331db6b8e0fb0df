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

package policy_test

import (
	"errors"
	"testing"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/policy"
	"dirpx.dev/serx/typesys"
)

type Invoice struct{}

func TestEffective(t *testing.T) {
	cases := []struct {
		p, backend, want apis.UnregisteredTypePolicy
	}{
		{apis.PolicyThrow, apis.PolicyAttempt, apis.PolicyThrow},
		{apis.PolicyAttempt, apis.PolicyThrow, apis.PolicyAttempt},
		{apis.PolicyUseBackendDefault, apis.PolicyAttempt, apis.PolicyAttempt},
		{apis.PolicyUseBackendDefault, apis.PolicyThrow, apis.PolicyThrow},
		{apis.PolicyUseBackendDefault, apis.PolicyUseBackendDefault, apis.PolicyThrow},
	}
	for _, tc := range cases {
		if got := policy.Effective(tc.p, tc.backend); got != tc.want {
			t.Fatalf("Effective(%s, %s) = %s, want %s", tc.p, tc.backend, got, tc.want)
		}
	}
}

func TestCheck(t *testing.T) {
	u := typesys.New(typesys.WithoutBuildInfo())
	invoice := typesys.For[Invoice](u)
	str := typesys.For[string](u)
	never := func(apis.Type) bool { return false }
	always := func(apis.Type) bool { return true }

	err := policy.Check(invoice, apis.Deserialize, apis.PolicyThrow, apis.PolicyAttempt, "billing", never)
	var ue *apis.UnregisteredTypeError
	if !errors.As(err, &ue) || ue.Direction != apis.Deserialize || ue.Type != invoice || ue.Configuration != "billing" {
		t.Fatalf("Throw on unregistered = %v", err)
	}
	if err := policy.Check(invoice, apis.Serialize, apis.PolicyThrow, apis.PolicyAttempt, "billing", always); err != nil {
		t.Fatalf("Throw on registered = %v", err)
	}
	if err := policy.Check(invoice, apis.Serialize, apis.PolicyAttempt, apis.PolicyThrow, "billing", never); err != nil {
		t.Fatalf("Attempt = %v", err)
	}
	if err := policy.Check(invoice, apis.Serialize, apis.PolicyUseBackendDefault, apis.PolicyAttempt, "billing", never); err != nil {
		t.Fatalf("backend default Attempt = %v", err)
	}
	if err := policy.Check(invoice, apis.Serialize, apis.PolicyUseBackendDefault, apis.PolicyThrow, "billing", never); !apis.IsUnregisteredType(err) {
		t.Fatalf("backend default Throw = %v", err)
	}
	for _, dir := range []apis.Direction{apis.Serialize, apis.Deserialize} {
		if err := policy.Check(str, dir, apis.PolicyThrow, apis.PolicyThrow, "billing", never); err != nil {
			t.Fatalf("string is exempt, got %v", err)
		}
	}
	if err := policy.Check(nil, apis.Serialize, apis.PolicyAttempt, apis.PolicyAttempt, "billing", never); !errors.Is(err, apis.ErrNilType) {
		t.Fatalf("nil type = %v", err)
	}
}
