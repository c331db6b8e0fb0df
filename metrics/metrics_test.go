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

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"dirpx.dev/serx/metrics"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector("test", reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.Registered("shop", "Declared")
	c.Registered("shop", "Declared")
	c.Collision("shop", "skip")
	c.Unregistered("shop", "serialize")
	c.Resolved("")
	c.ObserveConfigure("shop", time.Millisecond)

	if n, err := testutil.GatherAndCount(reg, "test_registration_types_total"); err != nil || n != 1 {
		t.Fatalf("series = %d, %v", n, err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var got float64
	for _, f := range families {
		if f.GetName() == "test_registration_types_total" {
			got = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if got != 2 {
		t.Fatalf("registrations = %v, want 2", got)
	}
}

func TestCollector_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := metrics.NewCollector("", reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := metrics.NewCollector("", reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	a.Collision("x", "throw")
	b.Collision("x", "throw")
	if n, err := testutil.GatherAndCount(reg, "serx_registration_collisions_total"); err != nil || n != 1 {
		t.Fatalf("series = %d, %v", n, err)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *metrics.Collector
	c.Registered("a", "b")
	c.Collision("a", "b")
	c.Unregistered("a", "b")
	c.Resolved("a")
	c.ObserveConfigure("a", time.Second)
	if _, err := metrics.NewCollector("x", nil); err == nil {
		t.Fatalf("nil registerer must fail")
	}
}
