package gen

import (
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/log"
)

func quiet() Option { return WithLogger(log.Logger{}) }

// generate expands src and checks the result is a valid Go file.
func generate(t *testing.T, src string, opts ...Option) string {
	t.Helper()

	out, err := New(append(opts, quiet())...).Source(t.Context(), "greet.go", []byte(src))
	if err != nil {
		t.Fatalf("Source: %v", err)
	}

	if _, err := parser.ParseFile(token.NewFileSet(), "greet_interp.go", out, 0); err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, out)
	}

	return string(out)
}

func contains(t *testing.T, out string, want ...string) {
	t.Helper()

	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output lacks %q:\n%s", w, out)
		}
	}
}

func lacks(t *testing.T, out string, unwanted ...string) {
	t.Helper()

	for _, u := range unwanted {
		if strings.Contains(out, u) {
			t.Errorf("output contains %q:\n%s", u, out)
		}
	}
}

const greetSource = `//go:build interp

package greet

import "github.com/ardnew/interp/fstr"

func Greet(first, second string, ducks []string) string {
	fstr.P("${first}${second}")
	return fstr.S("$first and ${ ducks[1] }, 100%")
}
`

func TestSource_Format(t *testing.T) {
	out := generate(t, greetSource)

	if !strings.HasPrefix(out, Header+"\n") {
		t.Errorf("output does not start with the header:\n%s", out)
	}

	contains(t, out,
		"//go:build !interp",
		`"fmt"`,
		`fmt.Printf("%v%v\n", first, second)`,
		`return fmt.Sprintf("%v and %v, 100%%", first, ducks[1])`,
	)
	lacks(t, out, "fstr", "//go:build interp\n")
}

func TestSource_Builder(t *testing.T) {
	out := generate(t, greetSource, WithStrategy(interp.StrategyBuilder))

	contains(t, out,
		`"strings"`,
		"var b strings.Builder",
		"fmt.Fprint(&b, ducks[1])",
		`b.WriteString(", 100%")`,
		"fmt.Println(func() string {",
	)
}

func TestSource_InvalidUTF8Kept(t *testing.T) {
	out := generate(t, `package greet

import "github.com/ardnew/interp/fstr"

func Bytes(x int) string { return fstr.S("\xff$x\xfe") }
`)

	contains(t, out, `fmt.Sprintf("\xff%v\xfe", x)`)
	lacks(t, out, `\ufffd`, "\ufffd")
}

func TestSource_ImportForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"renamed",
			"package p\n\nimport fs \"github.com/ardnew/interp/fstr\"\n\nfunc f(n int) { fs.P(\"n=$n\") }\n",
			`fmt.Printf("n=%v\n", n)`,
		},
		{
			"dot",
			"package p\n\nimport . \"github.com/ardnew/interp/fstr\"\n\nvar name = \"Doc\"\nvar s = S(\"$name\")\n",
			`var s = fmt.Sprintf("%v", name)`,
		},
		{
			"no markers",
			"package p\n\nvar s = \"$name\"\n",
			`var s = "$name"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.src)
			contains(t, out, tt.want)
			lacks(t, out, "interp/fstr")
		})
	}
}

func TestSource_OtherPackageNamedFstr(t *testing.T) {
	src := "package p\n\nimport fstr \"example.com/fstr\"\n\nvar s = fstr.S(\"$x\")\n"

	g := New(quiet())

	out, n, err := g.source(t.Context(), "p.go", []byte(src))
	if err != nil {
		t.Fatal(err)
	}

	if n != 0 {
		t.Errorf("expanded %d calls of an unrelated package", n)
	}

	contains(t, string(out), `fstr.S("$x")`)
}

func TestSource_Nested(t *testing.T) {
	src := "package p\n\nimport \"github.com/ardnew/interp/fstr\"\n\n" +
		"var s = fstr.S(\"outer ${fstr.S(\\\"inner $x\\\")}\")\n"

	out := generate(t, src)
	contains(t, out, `fmt.Sprintf("outer %v", fmt.Sprintf("inner %v", x))`)

	_, err := New(quiet(), WithMaxDepth(1)).Source(t.Context(), "p.go", []byte(src))
	if !errors.Is(err, ErrNestingDepth) {
		t.Errorf("depth 1: err = %v, want ErrNestingDepth", err)
	}
}

func TestSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		call string
		want *interp.Error
	}{
		{"no arguments", "fstr.S()", interp.ErrInvalidInvocation},
		{"two arguments", `fstr.S("a", "b")`, interp.ErrInvalidInvocation},
		{"identifier", "fstr.S(x)", interp.ErrInvalidInvocation},
		{"concatenation", `fstr.S("a" + "b")`, interp.ErrInvalidInvocation},
		{"spread", "fstr.S(xs...)", interp.ErrInvalidInvocation},
		{"raw literal", "fstr.S(`$x`)", interp.ErrRawLiteralRejected},
		{"unterminated", `fstr.S("Hello ${name")`, interp.ErrUnterminatedExpression},
		{"bad follower", `fstr.S("costs $5")`, interp.ErrInvalidDelimiterFollower},
		{"bad expression", `fstr.S("${a +}")`, interp.ErrInvalidExpressionSource},
		{"empty expression", `fstr.S("${}")`, interp.ErrInvalidExpressionSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package p\n\nimport \"github.com/ardnew/interp/fstr\"\n\nvar s = " + tt.call + "\n"

			out, err := New(quiet()).Source(t.Context(), "p.go", []byte(src))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			if out != nil {
				t.Error("partial output returned with error")
			}

			var pe *PositionError
			if !errors.As(err, &pe) || pe.Pos.Line != 5 {
				t.Errorf("err = %v, want position on line 5", err)
			}
		})
	}
}

func TestSource_ErrorColumn(t *testing.T) {
	src := "package p\n\nimport \"github.com/ardnew/interp/fstr\"\n\nvar s = fstr.S(\"costs $5\")\n"

	_, err := New(quiet()).Source(t.Context(), "p.go", []byte(src))

	var pe *PositionError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v", err)
	}

	if pe.Pos.Line != 5 || pe.Pos.Column != 24 {
		t.Errorf("position = %d:%d, want 5:24", pe.Pos.Line, pe.Pos.Column)
	}

	if !strings.HasPrefix(err.Error(), "p.go:5:24: ") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a+b", "a + b"},
		{"user.Name /* who */", "user.Name"},
		{`m["}"]`, `m["}"]`},
		{"func() int { return 1 }()", "func() int { return 1 }()"},
	}

	for _, tt := range tests {
		got, err := canonical(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("canonical(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []string{"", "a +", "x := 1", "a, b"} {
		if _, err := canonical(bad); err == nil {
			t.Errorf("canonical(%q) succeeded", bad)
		}
	}
}

func TestInvertBuildTag(t *testing.T) {
	tests := []struct{ in, want string }{
		{"//go:build interp\n\npackage p\n", "//go:build !interp\n\npackage p\n"},
		{"//go:build !interp\n\npackage p\n", "//go:build interp\n\npackage p\n"},
		{"//go:build interp && linux\n\npackage p\n", "//go:build !interp && linux\n\npackage p\n"},
		{"//go:build windows || interp\n\npackage p\n", "//go:build windows || !interp\n\npackage p\n"},
		{"//go:build linux\n\npackage p\n", "//go:build linux\n\npackage p\n"},
		{"package p\n\n//go:build interp\n", "package p\n\n//go:build interp\n"},
	}

	for _, tt := range tests {
		if got := string(invertBuildTag([]byte(tt.in), BuildTag)); got != tt.want {
			t.Errorf("invertBuildTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplice(t *testing.T) {
	got := splice([]byte("0123456789"), []edit{
		{start: 7, end: 9, text: "x"},
		{start: 1, end: 3, text: "abc"},
		{start: 5, end: 5, text: "-"},
	})

	if string(got) != "0abc34-56x9" {
		t.Errorf("splice = %q", got)
	}
}
