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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(append(args, "--env-prefix", "SERXCTLTEST"))
	err := cmd.Execute()
	return out.String(), err
}

func TestRegistrations_JSON(t *testing.T) {
	for _, b := range []string{"json", "bson", "cbor"} {
		out, err := run(t, "registrations", "--backend", b, "--format", "json")
		if err != nil {
			t.Fatalf("%s: %v", b, err)
		}
		var regs []registration
		if err := json.Unmarshal([]byte(out), &regs); err != nil {
			t.Fatalf("%s: decode %q: %v", b, out, err)
		}
		byType := map[string]registration{}
		for _, r := range regs {
			byType[r.Type] = r
		}
		for _, name := range []string{"time.Time", "github.com/go-openapi/strfmt.DateTime"} {
			r, ok := byType[name]
			if !ok {
				t.Fatalf("%s: %s missing from %v", b, name, regs)
			}
			if r.Owner != "serx.internal" || !r.Converter || r.Reason != "Declared" {
				t.Fatalf("%s: %s = %+v", b, name, r)
			}
		}
	}
}

func TestRegistrations_YAML(t *testing.T) {
	out, err := run(t, "registrations")
	if err != nil {
		t.Fatalf("registrations: %v", err)
	}
	var regs []registration
	if err := yaml.Unmarshal([]byte(out), &regs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(regs) < 2 {
		t.Fatalf("registrations = %v", regs)
	}
}

func TestRegistrations_Errors(t *testing.T) {
	if _, err := run(t, "registrations", "--backend", "xml"); err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("unknown backend err = %v", err)
	}
	if _, err := run(t, "registrations", "--format", "toml"); err == nil {
		t.Fatal("unknown output format accepted")
	}
	if _, err := run(t, "registrations", "extra"); err == nil {
		t.Fatal("positional argument accepted")
	}
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", "example.com/shop.Page[example.com/shop.Order]@v1.2.0", "-f", "json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var p parsedName
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Pkg != "example.com/shop" || p.Ident != "Page" || p.Version != "v1.2.0" || !p.Qualified {
		t.Fatalf("parse = %+v", p)
	}
	if len(p.Args) != 1 || p.Args[0].Ident != "Order" {
		t.Fatalf("args = %+v", p.Args)
	}
	if p.Short != "Page[Order]" {
		t.Fatalf("short = %q", p.Short)
	}

	if _, err := run(t, "parse", "Page[Order"); err == nil {
		t.Fatal("malformed name accepted")
	}
}

func TestResolve(t *testing.T) {
	out, err := run(t, "resolve", "DateTime", "--format", "json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var r resolution
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Type != "github.com/go-openapi/strfmt.DateTime" || r.Kind != "struct" || r.Wire != r.Type {
		t.Fatalf("resolve = %+v", r)
	}

	if _, err := run(t, "resolve", "example.com/nowhere.Missing", "-b", "bson"); err == nil {
		t.Fatal("unknown type resolved")
	}
}

func TestSettings_FileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "serx.yaml")
	if err := os.WriteFile(file, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", file, "parse", "Order"); err != nil {
		t.Fatalf("with config file: %v", err)
	}
	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "parse", "Order"); err == nil {
		t.Fatal("missing config file accepted")
	}

	t.Setenv("SERXCTLTEST_UNREGISTERED_TYPE_POLICY", "sometimes")
	if _, err := run(t, "parse", "Order"); err == nil {
		t.Fatal("invalid environment setting accepted")
	}
}
