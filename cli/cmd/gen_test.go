package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/interp/gen"
)

const greetSource = `//go:build interp

package greet

import "github.com/ardnew/interp/fstr"

func Greet(name string) string {
	return fstr.S("Hello, ${name}!")
}
`

func writeGreet(t *testing.T) (dir, path string) {
	t.Helper()

	dir = t.TempDir()
	path = filepath.Join(dir, "greet.go")

	if err := os.WriteFile(path, []byte(greetSource), 0o600); err != nil {
		t.Fatal(err)
	}

	return dir, path
}

func TestGen_Directory(t *testing.T) {
	dir, _ := writeGreet(t)

	if res := run(t, "", "gen", dir); res.err != nil {
		t.Fatalf("gen: %v", res.err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "greet_interp.go"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}

	for _, want := range []string{gen.Header, "//go:build !interp", `fmt.Sprintf("Hello, %v!", name)`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGen_StdoutBuilderSuffix(t *testing.T) {
	dir, path := writeGreet(t)

	res := run(t, "", "gen", "-c", "-s", "builder", "--suffix", "_x", path)
	if res.err != nil {
		t.Fatalf("gen: %v", res.err)
	}

	if !strings.Contains(res.stdout, "strings.Builder") {
		t.Errorf("stdout missing builder code:\n%s", res.stdout)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 {
		t.Errorf("stdout mode wrote files: %v", entries)
	}
}

func TestGen_GOFILE(t *testing.T) {
	dir, _ := writeGreet(t)

	t.Chdir(dir)
	t.Setenv("GOFILE", "greet.go")

	res := run(t, "", "gen", "--suffix", ".gen")
	if res.err != nil {
		t.Fatalf("gen: %v", res.err)
	}

	if _, err := os.Stat(filepath.Join(dir, "greet.gen.go")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestGen_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.go")
	src := strings.Replace(greetSource, `"Hello, ${name}!"`, `"Hello, ${name"`, 1)

	if err := os.WriteFile(bad, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	res := run(t, "", "gen", bad)

	var pe *gen.PositionError
	if !errors.As(res.err, &pe) {
		t.Fatalf("error = %v, want a position error", res.err)
	}

	if _, err := os.Stat(filepath.Join(dir, "bad_interp.go")); err == nil {
		t.Error("output written despite the error")
	}

	if res := run(t, "", "gen", "-d", "percent", dir); res.err == nil {
		t.Error("unknown dialect accepted")
	}
}

func TestGenPaths(t *testing.T) {
	t.Setenv("GOFILE", "")

	if got := (&Gen{}).paths(); !slices.Equal(got, []string{"."}) {
		t.Errorf("paths() = %v, want [.]", got)
	}

	t.Setenv("GOFILE", "x.go")

	if got := (&Gen{}).paths(); !slices.Equal(got, []string{"x.go"}) {
		t.Errorf("paths() with GOFILE = %v", got)
	}

	if got := (&Gen{Paths: []string{"a", "b"}}).paths(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("paths() with args = %v", got)
	}
}
