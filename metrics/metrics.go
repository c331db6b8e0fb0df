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

// Package metrics exposes registration engine counters to Prometheus.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace is used when NewCollector receives an empty namespace.
const DefaultNamespace = "serx"

// Collector records registration, collision, policy and resolution events.
type Collector struct {
	registrations *prometheus.CounterVec
	collisions    *prometheus.CounterVec
	unregistered  *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	configure     *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them with reg.
// Collectors already registered under the same names are reused.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, errors.New("metrics: registerer is nil")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "types_total",
			Help:      "Types registered with a backend, by configuration and reason.",
		}, []string{"configuration", "reason"}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "collisions_total",
			Help:      "Repeated registrations, by configuration and outcome.",
		}, []string{"configuration", "outcome"}),
		unregistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "unregistered_rejections_total",
			Help:      "Serialize and deserialize calls rejected for unregistered types.",
		}, []string{"configuration", "direction"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Serialized type names resolved, by winning strategy.",
		}, []string{"strategy"}),
		configure: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "configure_duration_seconds",
			Help:      "Duration of Configure runs.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"configuration"}),
	}

	var err error
	if c.registrations, err = register(reg, c.registrations); err != nil {
		return nil, err
	}
	if c.collisions, err = register(reg, c.collisions); err != nil {
		return nil, err
	}
	if c.unregistered, err = register(reg, c.unregistered); err != nil {
		return nil, err
	}
	if c.resolutions, err = register(reg, c.resolutions); err != nil {
		return nil, err
	}
	if c.configure, err = register(reg, c.configure); err != nil {
		return nil, err
	}
	return c, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("metrics: register collector failed: %w", err)
	}
	return c, nil
}

// Registered counts one type handed to a backend.
func (c *Collector) Registered(configuration, reason string) {
	if c == nil {
		return
	}
	c.registrations.WithLabelValues(configuration, reason).Inc()
}

// Collision counts one repeated registration.
func (c *Collector) Collision(configuration, outcome string) {
	if c == nil {
		return
	}
	c.collisions.WithLabelValues(configuration, outcome).Inc()
}

// Unregistered counts one policy rejection.
func (c *Collector) Unregistered(configuration, direction string) {
	if c == nil {
		return
	}
	c.unregistered.WithLabelValues(configuration, direction).Inc()
}

// Resolved counts one resolved type name.
func (c *Collector) Resolved(strategy string) {
	if c == nil {
		return
	}
	if strategy == "" {
		strategy = "unknown"
	}
	c.resolutions.WithLabelValues(strategy).Inc()
}

// ObserveConfigure records the duration of a Configure run.
func (c *Collector) ObserveConfigure(configuration string, d time.Duration) {
	if c == nil {
		return
	}
	c.configure.WithLabelValues(configuration).Observe(d.Seconds())
}
