package interp

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestInterpolate_Fixtures(t *testing.T) {
	env := map[string]any{
		"first":       "Mickey",
		"second":      "Mouse",
		"name":        "Aladdin",
		"lilo":        "Lilo",
		"stitch":      "Stitch",
		"prince":      "Prince Charming",
		"_full_name_": "Snow White",
		"Olafø":       "Olaf",
		"Olafↈ":       "Olaf",
		"x‿y":         "tie",
		"ducks":       []string{"Huey", "Dewey", "Louie"},
	}

	tests := []struct {
		template string
		want     string
	}{
		{"Doc", "Doc"},
		{"${prince}", "Prince Charming"},
		{"$prince", "Prince Charming"},
		{"${lilo} and Stitch", "Lilo and Stitch"},
		{"Lilo and $stitch", "Lilo and Stitch"},
		{"${lilo} and ${stitch}", "Lilo and Stitch"},
		{"${first}${second}", "MickeyMouse"},
		{"$first${second}", "MickeyMouse"},
		{"${first}$second", "MickeyMouse"},
		{"$first$second", "MickeyMouse"},
		{"$name is the star of $name.", "Aladdin is the star of Aladdin."},
		{"${_full_name_}", "Snow White"},
		{"~$Olafø~", "~Olaf~"},
		{"~$Olafↈ~", "~Olaf~"},
		{"${ x‿y }", "tie"},
		{"a\xffb", "a\xffb"},
		{"\xff$first\xfe", "\xffMickey\xfe"},
		{"${ducks[1]}", "Dewey"},
		{"${ join(ducks, \", \") }", "Huey, Dewey, Louie"},
		{"${ prince }", "Prince Charming"},
		{"costs $$5", "costs $5"},
		{"${ {{\"k\": first}}.k }", "Mickey"},
		{"${len(ducks) * 2}", "6"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := Interpolate(t.Context(), tt.template, env)
			if err != nil {
				t.Fatalf("Interpolate(%q): %v", tt.template, err)
			}

			if got != tt.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestInterpolate_BraceDialect(t *testing.T) {
	got, err := Interpolate(t.Context(), "{{a}} = { a }", map[string]any{"a": 1},
		WithDialect(Brace))
	if err != nil {
		t.Fatal(err)
	}

	if got != "{a} = 1" {
		t.Errorf("got %q, want %q", got, "{a} = 1")
	}
}

func TestInterpolate_EvaluatesEachOccurrence(t *testing.T) {
	calls := 0
	env := map[string]any{
		"next": func() int {
			calls++

			return calls
		},
	}

	got, err := Interpolate(t.Context(), "${next()} ${next()} ${next()}", env, WithCache(false))
	if err != nil {
		t.Fatal(err)
	}

	if got != "1 2 3" || calls != 3 {
		t.Errorf("got %q after %d calls, want \"1 2 3\" after 3", got, calls)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		template string
		want     *Error
	}{
		{"Hello ${name", ErrUnterminatedExpression},
		{"costs $5", ErrInvalidDelimiterFollower},
		{"${1 +}", ErrInvalidExpressionSource},
		{"${  }", ErrInvalidExpressionSource},
	}

	for _, tt := range tests {
		_, err := Compile(tt.template)
		if !errors.Is(err, tt.want) {
			t.Errorf("Compile(%q) error = %v, want %v", tt.template, err, tt.want)
		}
	}
}

func TestCompile_InvalidExpressionNamesSource(t *testing.T) {
	_, err := Compile("ok ${a +* b}")

	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("error %v does not wrap *SourceError", err)
	}

	if se.Source != "a +* b" || se.Offset != 5 {
		t.Errorf("SourceError = %+v", se)
	}

	if !strings.Contains(err.Error(), `"a +* b"`) {
		t.Errorf("message %q omits the expression", err.Error())
	}
}

func TestProgram_Identifiers(t *testing.T) {
	p := MustCompile("${user.Name} has ${let n = len(items); n * price}", WithCache(false))

	want := []string{"items", "price", "user"}
	if got := p.Identifiers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Identifiers() = %v, want %v", got, want)
	}
}

func TestProgram_KeyedNames(t *testing.T) {
	p := MustCompile("$Olafↈ and ${x‿y}", WithStrict(true), WithCache(false))

	if got, want := p.Identifiers(), []string{"Olafↈ", "x‿y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Identifiers() = %v, want %v", got, want)
	}

	if _, err := p.Run(t.Context(), map[string]any{"Olafↈ": 1}); !errors.Is(err, ErrUndefinedIdentifier) {
		t.Errorf("Run error = %v, want ErrUndefinedIdentifier", err)
	}

	got, err := p.Run(t.Context(), map[string]any{"Olafↈ": 1, "x‿y": 2})
	if err != nil || got != "1 and 2" {
		t.Errorf("Run = %q, %v", got, err)
	}
}

func TestIsEnvName(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"Olafↈ", true},
		{"x‿y", true},
		{"name", false},
		{"café", false},
		{"_x1", false},
		{"a.b", false},
		{"1x", false},
		{"x ↈ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isEnvName(tt.src); got != tt.want {
			t.Errorf("isEnvName(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestProgram_Strict(t *testing.T) {
	p := MustCompile("$who", WithStrict(true), WithCache(false))

	_, err := p.Run(t.Context(), nil)
	if !errors.Is(err, ErrUndefinedIdentifier) {
		t.Fatalf("Run error = %v, want ErrUndefinedIdentifier", err)
	}

	got, err := p.Run(t.Context(), map[string]any{"who": "Doc"})
	if err != nil || got != "Doc" {
		t.Errorf("Run = %q, %v", got, err)
	}
}

func TestProgram_EnvFallback(t *testing.T) {
	environ := []string{"GREETING=hello", "HOME=/home/doc"}

	got, err := Interpolate(t.Context(), "$GREETING from ${env(\"HOME\")}", nil,
		WithEnvFallback(true), WithEnviron(environ), WithStrict(true))
	if err != nil {
		t.Fatal(err)
	}

	if got != "hello from /home/doc" {
		t.Errorf("got %q", got)
	}

	// Caller bindings win over the environment.
	got, err = Interpolate(t.Context(), "$GREETING", map[string]any{"GREETING": "hi"},
		WithEnvFallback(true), WithEnviron(environ))
	if err != nil || got != "hi" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestProgram_Builtins(t *testing.T) {
	got, err := Interpolate(t.Context(), "${path.base(\"a/b/c.go\")} ${path.ext(\"c.go\")}", nil)
	if err != nil {
		t.Fatal(err)
	}

	if got != "c.go .go" {
		t.Errorf("got %q", got)
	}

	_, err = Interpolate(t.Context(), "${path.base(\"x\")}", nil, WithBuiltins(false), WithStrict(true))
	if !errors.Is(err, ErrUndefinedIdentifier) {
		t.Errorf("builtins disabled: err = %v", err)
	}
}

func TestProgram_EvaluateError(t *testing.T) {
	_, err := Interpolate(t.Context(), "${ducks[5]}", map[string]any{"ducks": []int{1}})
	if !errors.Is(err, ErrEvaluate) {
		t.Errorf("err = %v, want ErrEvaluate", err)
	}
}

func TestProgram_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := MustCompile("$x").Run(ctx, map[string]any{"x": 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	// Templates without expressions never observe ctx.
	got, err := MustCompile("plain").Run(ctx, nil)
	if err != nil || got != "plain" {
		t.Errorf("Run = %q, %v", got, err)
	}
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer

	if err := Fprint(t.Context(), &buf, "Hello, $name", map[string]any{"name": "Doc"}); err != nil {
		t.Fatal(err)
	}

	if buf.String() != "Hello, Doc\n" {
		t.Errorf("Fprint wrote %q", buf.String())
	}

	buf.Reset()

	if err := Fprint(t.Context(), &buf, "${", nil); err == nil || buf.Len() != 0 {
		t.Errorf("failed Fprint wrote %q, err %v", buf.String(), err)
	}
}

func TestCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	var wg sync.WaitGroup

	progs := make([]*Program, 8)

	for i := range progs {
		wg.Go(func() { progs[i] = MustCompile("${a} and ${b}") })
	}

	wg.Wait()

	for _, p := range progs[1:] {
		if p.compiled != progs[0].compiled {
			t.Fatal("concurrent compiles did not share the cached program")
		}
	}

	MustCompile("${a} and ${b}", WithDialect(Hash))
	MustCompile("uncached", WithCache(false))

	if n := CacheLen(); n != 2 {
		t.Errorf("CacheLen() = %d, want 2", n)
	}

	if cacheKey(Dollar, "x") == cacheKey(Hash, "x") {
		t.Error("dialects share a cache key")
	}
}

func TestCache_Errors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		if _, err := Compile("${"); !errors.Is(err, ErrUnterminatedExpression) {
			t.Fatalf("cached error = %v", err)
		}
	}
}

func TestReadTemplate(t *testing.T) {
	got, err := ReadTemplate(strings.NewReader("Hello, $name"))
	if err != nil || got != "Hello, $name" {
		t.Errorf("ReadTemplate = %q, %v", got, err)
	}
}

func TestMungPrefix(t *testing.T) {
	got := mungPrefix("/usr/bin", "/opt/bin")
	if !strings.Contains(got, "/opt/bin") || !strings.Contains(got, "/usr/bin") {
		t.Errorf("mungPrefix = %q", got)
	}
}

func TestBuiltins(t *testing.T) {
	names := Builtins()

	for _, want := range []string{"env", "file", "mung", "path"} {
		found := false

		for _, n := range names {
			found = found || n == want
		}

		if !found {
			t.Errorf("Builtins() = %v, missing %q", names, want)
		}
	}

	if members := BuiltinMembers("path"); !reflect.DeepEqual(members, []string{"abs", "base", "dir", "ext", "join"}) {
		t.Errorf("BuiltinMembers(path) = %v", members)
	}

	if BuiltinMembers("env") != nil {
		t.Error("env is not a namespace")
	}
}

func TestEvaluate(t *testing.T) {
	env := map[string]any{"ducks": []string{"Huey", "Dewey", "Louie"}}

	got, err := Evaluate(t.Context(), "len(ducks) + 1", env)
	if err != nil || got != 4 {
		t.Fatalf("Evaluate = %v (%T), %v", got, got, err)
	}

	got, err = Evaluate(t.Context(), `path.base("/a/b.go")`, nil)
	if err != nil || got != "b.go" {
		t.Errorf("Evaluate builtin = %v, %v", got, err)
	}

	if _, err := Evaluate(t.Context(), "ducks[", env); !errors.Is(err, ErrInvalidExpressionSource) {
		t.Errorf("syntax error: %v", err)
	}

	if _, err := Evaluate(t.Context(), "nobody", env, WithStrict(true)); !errors.Is(err, ErrUndefinedIdentifier) {
		t.Errorf("strict: %v", err)
	}
}

func TestBuiltin(t *testing.T) {
	if v, ok := Builtin("path.join"); !ok || reflect.TypeOf(v).Kind() != reflect.Func {
		t.Errorf("Builtin(path.join) = %v, %v", v, ok)
	}

	if _, ok := Builtin("env"); !ok {
		t.Error("env is a builtin")
	}

	for _, missing := range []string{"path.nope", "cwd.x", "nope"} {
		if _, ok := Builtin(missing); ok {
			t.Errorf("Builtin(%q) found", missing)
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	tmpl := "Hello, ${user.Name}! You have ${count + 1} new messages in $box."

	for b.Loop() {
		if _, err := Compile(tmpl, WithCache(false)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRun(b *testing.B) {
	p := MustCompile("Hello, ${user.Name}! You have ${count + 1} new messages in $box.")
	env := map[string]any{
		"user":  map[string]any{"Name": "Ada"},
		"count": 2,
		"box":   "inbox",
	}

	for b.Loop() {
		if _, err := p.Run(b.Context(), env); err != nil {
			b.Fatal(err)
		}
	}
}
