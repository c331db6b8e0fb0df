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

// Package config holds process settings for configurations and tools:
// functional options over Settings, and a viper loader reading a file and
// the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"dirpx.dev/serx/apis"
	"dirpx.dev/serx/logger"
	"dirpx.dev/serx/typesys"
)

const (
	// DefaultEnvPrefix prefixes environment variables read by Load.
	DefaultEnvPrefix = "SERX"
	// DefaultMaxUnwrap bounds container unwrapping of runtime types.
	DefaultMaxUnwrap = typesys.DefaultMaxUnwrap
	// DefaultMetricsNamespace is the Prometheus namespace.
	DefaultMetricsNamespace = "serx"
)

// Settings are the tunables shared by configurations and tools.
type Settings struct {
	LogLevel  logger.LogLevel
	LogFormat logger.LogFormat
	// VersionMatch applies to qualified type names read during deserialization.
	VersionMatch apis.VersionMatchStrategy
	// CollisionStrategy is used by specs built from settings.
	CollisionStrategy apis.CollisionStrategy
	// UnregisteredTypePolicy is used by specs built from settings.
	UnregisteredTypePolicy apis.UnregisteredTypePolicy
	// MetricsNamespace names the Prometheus namespace; empty disables metrics.
	MetricsNamespace string
	// MaxUnwrap limits container unwrapping of runtime types.
	MaxUnwrap int
	// MapPreferKey normalizes map runtime types to their key type first.
	MapPreferKey bool
}

// NewSettings constructs Settings from the given options.
func NewSettings(opts ...Option) Settings {
	s := DefaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.MaxUnwrap < 0 {
		s.MaxUnwrap = DefaultMaxUnwrap
	}
	return s
}

// DefaultSettings is used when none are provided.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:               logger.InfoLevel,
		LogFormat:              logger.JSONFormat,
		VersionMatch:           apis.MatchAnySingleVersion,
		CollisionStrategy:      apis.CollisionThrow,
		UnregisteredTypePolicy: apis.PolicyUseBackendDefault,
		MetricsNamespace:       DefaultMetricsNamespace,
		MaxUnwrap:              DefaultMaxUnwrap,
	}
}

// Option is a functional option that mutates Settings during construction.
type Option func(*Settings)

// WithLogLevel sets the log level.
func WithLogLevel(l logger.LogLevel) Option {
	return func(s *Settings) { s.LogLevel = l }
}

// WithLogFormat sets the log format.
func WithLogFormat(f logger.LogFormat) Option {
	return func(s *Settings) { s.LogFormat = f }
}

// WithVersionMatch sets the version match strategy.
func WithVersionMatch(m apis.VersionMatchStrategy) Option {
	return func(s *Settings) { s.VersionMatch = m }
}

// WithCollisionStrategy sets the collision strategy.
func WithCollisionStrategy(c apis.CollisionStrategy) Option {
	return func(s *Settings) { s.CollisionStrategy = c }
}

// WithUnregisteredTypePolicy sets the unregistered-type policy.
func WithUnregisteredTypePolicy(p apis.UnregisteredTypePolicy) Option {
	return func(s *Settings) { s.UnregisteredTypePolicy = p }
}

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(ns string) Option {
	return func(s *Settings) { s.MetricsNamespace = ns }
}

// WithMaxUnwrap sets MaxUnwrap. A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(s *Settings) {
		if max < 0 {
			s.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		s.MaxUnwrap = max
	}
}

// WithMapPreferKey sets MapPreferKey.
func WithMapPreferKey(prefer bool) Option {
	return func(s *Settings) { s.MapPreferKey = prefer }
}

// Normalize returns the runtime type unwrapping options.
func (s Settings) Normalize() typesys.NormalizeOptions {
	return typesys.NormalizeOptions{MaxUnwrap: s.MaxUnwrap, MapPreferKey: s.MapPreferKey}
}

// Logger builds the zap logger described by s.
func (s Settings) Logger() (*logger.ZapLogger, error) {
	return logger.NewZapLogger(logger.Config{Level: s.LogLevel, Format: s.LogFormat})
}

// Validate checks that every enumerated setting is known.
func (s Settings) Validate() error {
	if _, err := logger.ParseLogLevel(string(s.LogLevel)); err != nil {
		return err
	}
	if _, err := logger.ParseLogFormat(string(s.LogFormat)); err != nil {
		return err
	}
	if _, err := s.VersionMatch.MarshalText(); err != nil {
		return err
	}
	if _, err := s.CollisionStrategy.MarshalText(); err != nil {
		return err
	}
	if _, err := s.UnregisteredTypePolicy.MarshalText(); err != nil {
		return err
	}
	if s.MaxUnwrap < 0 {
		return fmt.Errorf("config: max_unwrap must not be negative, got %d", s.MaxUnwrap)
	}
	return nil
}

// Loader reads Settings with precedence: ENV > file > defaults.
type Loader struct {
	configFile string
	envPrefix  string
}

// NewLoader creates a Loader. configFile may be empty; envPrefix defaults to DefaultEnvPrefix.
func NewLoader(configFile, envPrefix string) *Loader {
	return &Loader{configFile: configFile, envPrefix: envPrefix}
}

// Load is shorthand for NewLoader(configFile, envPrefix).Load().
func Load(configFile, envPrefix string) (Settings, error) {
	return NewLoader(configFile, envPrefix).Load()
}

// Load reads the settings.
func (l *Loader) Load() (Settings, error) {
	v := viper.New()
	l.setDefaults(v, DefaultSettings())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}
	l.bindEnvVars(v)

	s, err := decode(v)
	if err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}

func (l *Loader) setDefaults(v *viper.Viper, s Settings) {
	v.SetDefault("log.level", string(s.LogLevel))
	v.SetDefault("log.format", string(s.LogFormat))
	v.SetDefault("resolver.version_match", s.VersionMatch.String())
	v.SetDefault("registration.collision_strategy", s.CollisionStrategy.String())
	v.SetDefault("registration.unregistered_type_policy", s.UnregisteredTypePolicy.String())
	v.SetDefault("metrics.namespace", s.MetricsNamespace)
	v.SetDefault("runtime_type.max_unwrap", s.MaxUnwrap)
	v.SetDefault("runtime_type.map_prefer_key", s.MapPreferKey)
}

func (l *Loader) bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("log.level", l.prefixedEnv("LOG_LEVEL"))
	_ = v.BindEnv("log.format", l.prefixedEnv("LOG_FORMAT"))
	_ = v.BindEnv("resolver.version_match", l.prefixedEnv("VERSION_MATCH"))
	_ = v.BindEnv("registration.collision_strategy", l.prefixedEnv("COLLISION_STRATEGY"))
	_ = v.BindEnv("registration.unregistered_type_policy", l.prefixedEnv("UNREGISTERED_TYPE_POLICY"))
	_ = v.BindEnv("metrics.namespace", l.prefixedEnv("METRICS_NAMESPACE"))
	_ = v.BindEnv("runtime_type.max_unwrap", l.prefixedEnv("MAX_UNWRAP"))
	_ = v.BindEnv("runtime_type.map_prefer_key", l.prefixedEnv("MAP_PREFER_KEY"))
}

func (l *Loader) prefixedEnv(suffix string) string {
	prefix := strings.TrimSpace(l.envPrefix)
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), suffix)
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	var err error
	if s.LogLevel, err = logger.ParseLogLevel(v.GetString("log.level")); err != nil {
		return Settings{}, err
	}
	if s.LogFormat, err = logger.ParseLogFormat(v.GetString("log.format")); err != nil {
		return Settings{}, err
	}
	if s.VersionMatch, err = apis.ParseVersionMatchStrategy(v.GetString("resolver.version_match")); err != nil {
		return Settings{}, err
	}
	if s.CollisionStrategy, err = apis.ParseCollisionStrategy(v.GetString("registration.collision_strategy")); err != nil {
		return Settings{}, err
	}
	if s.UnregisteredTypePolicy, err = apis.ParseUnregisteredTypePolicy(v.GetString("registration.unregistered_type_policy")); err != nil {
		return Settings{}, err
	}
	s.MetricsNamespace = v.GetString("metrics.namespace")
	s.MaxUnwrap = v.GetInt("runtime_type.max_unwrap")
	s.MapPreferKey = v.GetBool("runtime_type.map_prefer_key")
	return s, nil
}
