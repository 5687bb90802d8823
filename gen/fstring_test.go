package gen

import (
	"errors"
	"go/token"
	"testing"

	"github.com/ardnew/interp/interp"
)

func TestRewriteFStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		n    int
	}{
		{
			"nested groups",
			"package p\n\n//interp:fstring\nfunc g(name string) string {\n" +
				"\tw := (f\"a $name\")\n\treturn f\"[${ name }]\" + w\n}\n",
			"package p\n\n//interp:fstring\nfunc g(name string) string {\n" +
				"\tw := (fmt.Sprintf(\"a %v\", name))\n\treturn fmt.Sprintf(\"[%v]\", name) + w\n}\n",
			2,
		},
		{
			"plain f untouched",
			"package p\n\n//interp:fstring\nfunc g(f string) string {\n\tv := f\n\treturn v + f\n}\n",
			"package p\n\n//interp:fstring\nfunc g(f string) string {\n\tv := f\n\treturn v + f\n}\n",
			0,
		},
		{
			"f at end of group",
			"package p\n\n//interp:fstring\nfunc g() { _ = f }\n",
			"package p\n\n//interp:fstring\nfunc g() { _ = f }\n",
			0,
		},
		{
			"prefix not touching literal",
			"package p\n\n//interp:fstring\nfunc g() { _ = f \"$x\" }\n",
			"package p\n\n//interp:fstring\nfunc g() { _ = f \"$x\" }\n",
			0,
		},
		{
			"other identifier",
			"package p\n\n//interp:fstring\nfunc g() { _ = ff\"$x\" }\n",
			"package p\n\n//interp:fstring\nfunc g() { _ = ff\"$x\" }\n",
			0,
		},
		{
			"only the marked function",
			"package p\n\nfunc h() { _ = f\"$x\" }\n\n//interp:fstring\nfunc g() { _ = f\"$y\" }\n",
			"package p\n\nfunc h() { _ = f\"$x\" }\n\n//interp:fstring\nfunc g() { _ = fmt.Sprintf(\"%v\", y) }\n",
			1,
		},
		{
			"brace in result type",
			"package p\n\n//interp:fstring\nfunc g() struct{ s string } { return struct{ s string }{f\"$x\"} }\n",
			"package p\n\n//interp:fstring\nfunc g() struct{ s string } { return struct{ s string }{fmt.Sprintf(\"%v\", x)} }\n",
			1,
		},
		{
			"method with doc comment",
			"package p\n\n//interp:fstring\n// String names t.\nfunc (t T) String() string { return f\"T($t.n)\" }\n",
			"package p\n\n//interp:fstring\n// String names t.\nfunc (t T) String() string { return fmt.Sprintf(\"T(%v.n)\", t) }\n",
			1,
		},
		{
			"directive on a variable",
			"package p\n\n//interp:fstring\nvar v = 1\n",
			"package p\n\n//interp:fstring\nvar v = 1\n",
			0,
		},
	}

	g := New(quiet())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := g.rewriteFStrings("p.go", []byte(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			if string(got) != tt.want || n != tt.n {
				t.Errorf("rewriteFStrings (%d)\n%s\nwant (%d)\n%s", n, got, tt.n, tt.want)
			}
		})
	}
}

func TestRewriteFStrings_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"raw", "//interp:fstring\nfunc g() { _ = f`$x` }\n", interp.ErrRawLiteralRejected},
		{"unterminated", "//interp:fstring\nfunc g() { _ = f\"${x\" }\n", interp.ErrUnterminatedExpression},
		{"unbalanced", "//interp:fstring\nfunc g() { _ = (f\"$x\" }\n", ErrUnbalanced},
		{"unclosed", "//interp:fstring\nfunc g() {\n", ErrUnbalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := New(quiet()).rewriteFStrings("p.go", []byte(tt.src))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_FString(t *testing.T) {
	src := "//go:build interp\n\npackage p\n\n//interp:fstring\n" +
		"func greet(name string, ducks []string) string {\n" +
		"\treturn f\"~$name~ ${ducks[1]}\"\n}\n"

	out := generate(t, src)
	contains(t, out, `return fmt.Sprintf("~%v~ %v", name, ducks[1])`, `import "fmt"`)
}

func TestParseTree(t *testing.T) {
	trees, err := parseTree(token.NewFileSet(), "p.go", []byte("a(b[c]{d})e"))
	if err != nil {
		t.Fatal(err)
	}

	// a ( ... ) e ;
	if len(trees) != 4 || trees[1].tok != token.LPAREN || trees[2].lit != "e" {
		t.Fatalf("top level = %d trees", len(trees))
	}

	paren := trees[1]
	if paren.start != 1 || paren.end != 10 || len(paren.kids) != 3 {
		t.Errorf("paren group = [%d,%d) with %d kids", paren.start, paren.end, len(paren.kids))
	}

	if brace := paren.kids[2]; brace.tok != token.LBRACE || len(brace.kids) != 1 {
		t.Errorf("brace group = %v", brace.tok)
	}
}
