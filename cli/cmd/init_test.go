package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
)

func decodeConfig(t *testing.T, doc string) map[string]any {
	t.Helper()

	var m map[string]any
	if err := yaml.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("generated configuration is not YAML: %v\n%s", err, doc)
	}

	return m
}

func section(t *testing.T, m map[string]any, key string) map[string]any {
	t.Helper()

	s, ok := m[key].(map[string]any)
	if !ok {
		t.Fatalf("section %q missing or not a mapping: %#v", key, m[key])
	}

	return s
}

func TestInit_Stdout(t *testing.T) {
	res := run(t, "", "--log-level", "debug", "init", "--stdout")
	if res.err != nil {
		t.Fatal(res.err)
	}

	doc := decodeConfig(t, res.stdout)

	if got := section(t, doc, "log")["level"]; got != "debug" {
		t.Errorf("log.level = %v, want debug", got)
	}

	eval := section(t, doc, "eval")
	if eval["dialect"] != "dollar" || eval["builtins"] != true {
		t.Errorf("eval section = %v", eval)
	}

	if _, ok := eval["var"]; ok {
		t.Error("empty slice flag written")
	}

	g := section(t, doc, "gen")
	if g["suffix"] != "_interp" || fmt.Sprint(g["depth"]) != "8" || g["strategy"] != "format" {
		t.Errorf("gen section = %v", g)
	}

	if _, ok := doc["help"]; ok {
		t.Error("help flag written")
	}
}

func TestInit_File(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		force    bool
		wantErr  error
	}{
		{"create", false, false, nil},
		{"overwrite with force", true, true, nil},
		{"refuse without force", true, false, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")

			if tt.existing {
				if err := os.WriteFile(path, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			args := []string{"init"}
			if tt.force {
				args = append(args, "--force")
			}

			res := runIn(t, dir, "", args...)

			if tt.wantErr != nil {
				if !errors.Is(res.err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", res.err, tt.wantErr)
				}

				if b, _ := os.ReadFile(path); string(b) != "existing: true\n" {
					t.Errorf("existing file modified: %q", b)
				}

				return
			}

			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}

			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			doc := decodeConfig(t, string(b))
			if _, ok := doc["existing"]; ok {
				t.Error("configuration was not replaced")
			}

			section(t, doc, "scan")
		})
	}
}
