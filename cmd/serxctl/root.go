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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"dirpx.dev/serx"
	"dirpx.dev/serx/backend"
	"dirpx.dev/serx/config"
	"dirpx.dev/serx/resolver"
	"dirpx.dev/serx/typename"
)

const (
	defaultEnvPrefix = "SERX"
	inspectSpecName  = "serxctl"
)

type globalFlags struct {
	configFile string
	envPrefix  string
}

type outputFlags struct {
	backend string
	format  string
}

func (o *outputFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.backend, "backend", "b", string(serx.JSON), "serialization backend (json, bson, cbor)")
	fs.StringVarP(&o.format, "format", "f", "yaml", "output format (yaml, json)")
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var g globalFlags
	cmd := &cobra.Command{
		Use:           "serxctl",
		Short:         "Inspect serx type registrations and serialized type names",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			s, err := config.Load(g.configFile, g.envPrefix)
			if err != nil {
				return err
			}
			return serx.Reset(s)
		},
	}
	cmd.SetOut(stdout)
	cmd.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "settings file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&g.envPrefix, "env-prefix", defaultEnvPrefix, "environment variable prefix")

	cmd.AddCommand(newRegistrationsCommand(), newParseCommand(), newResolveCommand())
	return cmd
}

// registration is the printable form of apis.RegistrationDetails.
type registration struct {
	Type      string `json:"type" yaml:"type"`
	Owner     string `json:"owner" yaml:"owner"`
	Sequence  uint64 `json:"sequence" yaml:"sequence"`
	Reason    string `json:"reason" yaml:"reason"`
	Members   string `json:"members" yaml:"members"`
	Related   string `json:"related" yaml:"related"`
	Converter bool   `json:"converter,omitempty" yaml:"converter,omitempty"`
	Deferred  bool   `json:"deferred,omitempty" yaml:"deferred,omitempty"`
}

func newRegistrationsCommand() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "registrations",
		Short: "Print the registrations every configuration of a backend starts with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ser, err := configured(o.backend)
			if err != nil {
				return err
			}
			var out []registration
			for _, d := range ser.Configuration().Registrations() {
				desc := d.Descriptor
				out = append(out, registration{
					Type:      d.Type().FullName(),
					Owner:     d.Owner,
					Sequence:  d.Sequence,
					Reason:    desc.Reason.String(),
					Members:   desc.MemberTypes.String(),
					Related:   desc.RelatedTypes.String(),
					Converter: desc.Augmentation != nil && desc.Augmentation.Converter != nil,
					Deferred:  d.Deferred(),
				})
			}
			return write(cmd.OutOrStdout(), o.format, out)
		},
	}
	o.bind(cmd.Flags())
	return cmd
}

// parsedName is the printable form of typename.Name.
type parsedName struct {
	Full      string       `json:"full" yaml:"full"`
	Short     string       `json:"short" yaml:"short"`
	Pkg       string       `json:"pkg,omitempty" yaml:"pkg,omitempty"`
	Ident     string       `json:"ident,omitempty" yaml:"ident,omitempty"`
	Raw       string       `json:"raw,omitempty" yaml:"raw,omitempty"`
	Version   string       `json:"version,omitempty" yaml:"version,omitempty"`
	Qualified bool         `json:"qualified" yaml:"qualified"`
	Args      []parsedName `json:"args,omitempty" yaml:"args,omitempty"`
}

func toParsed(n typename.Name) parsedName {
	p := parsedName{
		Full:      n.String(),
		Short:     n.Short(),
		Pkg:       n.Pkg,
		Ident:     n.Ident,
		Raw:       n.Raw,
		Version:   n.Version,
		Qualified: n.Qualified(),
	}
	for _, a := range n.Args {
		p.Args = append(p.Args, toParsed(a))
	}
	return p
}

func newParseCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse <type-name>",
		Short: "Parse a serialized type name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := typename.Parse(args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, toParsed(n))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	return cmd
}

type resolution struct {
	Token string `json:"token" yaml:"token"`
	Type  string `json:"type" yaml:"type"`
	Kind  string `json:"kind" yaml:"kind"`
	Wire  string `json:"wire" yaml:"wire"`
}

func newResolveCommand() *cobra.Command {
	var o outputFlags
	cmd := &cobra.Command{
		Use:   "resolve <type-name>",
		Short: "Resolve a serialized type name the way a backend reads it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ser, err := configured(o.backend)
			if err != nil {
				return err
			}
			cfg := ser.Configuration()
			ctx := resolver.Enter(context.Background(), cfg)
			t, err := serx.Resolver().ResolveType(ctx, args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), o.format, resolution{
				Token: args[0],
				Type:  t.FullName(),
				Kind:  t.Kind().String(),
				Wire:  serx.Resolver().TypeName(cfg, t),
			})
		},
	}
	o.bind(cmd.Flags())
	return cmd
}

// configured returns the process-wide serializer of an empty spec, which
// holds only the default dependencies of the backend.
func configured(name string) (*backend.Serializer, error) {
	kind, err := serx.ParseKind(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return nil, err
	}
	return serx.Configured(kind, serx.NewSpec(inspectSpecName))
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
