package repl

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/log"
)

// exprPrefix marks eval-mode input that is a bare expression rather than
// a template.
const exprPrefix = "="

// session holds the bindings and settings shared by every input line.
type session struct {
	vars        map[string]any
	dialect     interp.Dialect
	envFallback bool
	logger      log.Logger
}

func newSession(c config) *session {
	vars := maps.Clone(c.vars)
	if vars == nil {
		vars = map[string]any{}
	}

	return &session{
		vars:        vars,
		dialect:     c.dialect,
		envFallback: c.envFallback,
		logger:      c.logger,
	}
}

func (s *session) options() []interp.Option {
	return []interp.Option{
		interp.WithDialect(s.dialect),
		interp.WithEnvFallback(s.envFallback),
		interp.WithLogger(s.logger),
	}
}

// eval interpolates input as a template, or evaluates it as an expression
// when it starts with "=".
func (s *session) eval(ctx context.Context, input string) (string, error) {
	if src, ok := strings.CutPrefix(input, exprPrefix); ok {
		v, err := interp.Evaluate(ctx, strings.TrimSpace(src), s.vars, s.options()...)
		if err != nil {
			return "", err
		}

		return formatResult(v), nil
	}

	return interp.Interpolate(ctx, input, s.vars, s.options()...)
}

// set evaluates "NAME = EXPR" and binds the result.
func (s *session) set(ctx context.Context, args string) (string, error) {
	name, src, ok := strings.Cut(args, "=")
	if !ok {
		return "", fmt.Errorf("%w: set NAME = EXPR", ErrUsage)
	}

	name = strings.TrimSpace(name)
	if !isName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	v, err := interp.Evaluate(ctx, strings.TrimSpace(src), s.vars, s.options()...)
	if err != nil {
		return "", err
	}

	s.vars[name] = v

	s.logger.TraceContext(ctx, "repl set",
		slog.String("name", name),
		slog.String("type", typeName(v)),
	)

	return name + " = " + formatResult(v), nil
}

func (s *session) unset(name string) error {
	if _, ok := s.vars[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnbound, name)
	}

	delete(s.vars, name)

	return nil
}

// setDialect switches the template syntax. The empty name reports the
// current one.
func (s *session) setDialect(name string) (interp.Dialect, error) {
	if name == "" {
		return s.dialect, nil
	}

	d, err := interp.LookupDialect(name)
	if err != nil {
		return s.dialect, err
	}

	s.dialect = d

	return d, nil
}

// list renders each binding on its own line in name order.
func (s *session) list() string {
	if len(s.vars) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var sb strings.Builder

	for i, name := range slices.Sorted(maps.Keys(s.vars)) {
		if i > 0 {
			sb.WriteByte('\n')
		}

		v := s.vars[name]
		sb.WriteString("  " + name + " " + hintStyle.Render(preview(v)+" ("+typeName(v)+")"))
	}

	return sb.String()
}

// lookup resolves a dotted path through the bindings, then the builtins.
func (s *session) lookup(path string) (any, bool) {
	head, rest, _ := strings.Cut(path, ".")

	v, ok := s.vars[head]
	if !ok {
		return interp.Builtin(path)
	}

	for rest != "" {
		var name string

		name, rest, _ = strings.Cut(rest, ".")

		m, isMap := v.(map[string]any)
		if !isMap {
			return nil, false
		}

		if v, ok = m[name]; !ok {
			return nil, false
		}
	}

	return v, true
}

// names returns the completion candidates under parent, or the top-level
// names if parent is empty.
func (s *session) names(parent string) []string {
	if parent == "" {
		names := slices.Collect(maps.Keys(s.vars))
		names = append(names, interp.Builtins()...)
		names = append(names, exprBuiltinNames()...)
		slices.Sort(names)

		return slices.Compact(names)
	}

	v, ok := s.lookup(parent)
	if !ok {
		return nil
	}

	if m, ok := v.(map[string]any); ok {
		return slices.Sorted(maps.Keys(m))
	}

	return nil
}

// editable returns the bindings that survive a YAML round trip.
func (s *session) editable() map[string]any {
	out := make(map[string]any, len(s.vars))

	for name, v := range s.vars {
		if serializable(reflect.ValueOf(v)) {
			out[name] = v
		}
	}

	return out
}

// replace swaps the editable bindings for vars, keeping the rest.
func (s *session) replace(vars map[string]any) {
	for name := range s.editable() {
		delete(s.vars, name)
	}

	maps.Copy(s.vars, vars)
}

func serializable(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return false

	case reflect.Interface, reflect.Pointer:
		return v.IsNil() || serializable(v.Elem())

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if !serializable(v.Index(i)) {
				return false
			}
		}

	case reflect.Map:
		for it := v.MapRange(); it.Next(); {
			if !serializable(it.Value()) {
				return false
			}
		}
	}

	return true
}

func isName(s string) bool {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}

	return s != ""
}

// formatResult renders an expression value: strings quoted, collections
// in YAML flow style.
func formatResult(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"

	case string:
		return strconv.Quote(v)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Func:
		return rv.Type().String()

	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := yaml.MarshalWithOptions(v, yaml.Flow(true)); err == nil {
			return strings.TrimSpace(string(b))
		}
	}

	return fmt.Sprint(v)
}

const previewLimit = 40

func preview(v any) string {
	s := formatResult(v)
	if r := []rune(s); len(r) > previewLimit {
		return string(r[:previewLimit-3]) + "..."
	}

	return s
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}
