package repl

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

// signature describes a callable for the parameter hint.
type signature struct {
	name   string
	params []string // a "..." prefix marks a variadic parameter
}

func (s signature) String() string {
	return s.name + "(" + strings.Join(s.params, ", ") + ")"
}

// exprSignatures are the expr-lang builtins worth a hint, written as they
// appear in the language definition.
//
//nolint:gochecknoglobals
var exprSignatures = sync.OnceValue(func() map[string]signature {
	sigs := map[string]signature{}

	for _, text := range []string{
		"len(v)", "abs(n)", "ceil(n)", "floor(n)", "round(n)",
		"all(array, predicate)", "any(array, predicate)",
		"one(array, predicate)", "none(array, predicate)",
		"map(array, mapper)", "filter(array, predicate)",
		"find(array, predicate)", "findIndex(array, predicate)",
		"findLast(array, predicate)", "findLastIndex(array, predicate)",
		"groupBy(array, mapper)", "sortBy(array, mapper)",
		"count(array, predicate)", "reduce(array, reducer, initial)",
		"sum(array)", "mean(array)", "median(array)",
		"min(...n)", "max(...n)", "first(array)", "last(array)",
		"take(array, n)", "reverse(array)", "uniq(array)", "concat(...arrays)",
		"join(array, separator)", "split(string, separator)",
		"replace(string, old, new)", "repeat(string, n)",
		"indexOf(string, substring)", "lastIndexOf(string, substring)",
		"hasPrefix(string, prefix)", "hasSuffix(string, suffix)",
		"trim(string)", "trimPrefix(string, prefix)", "trimSuffix(string, suffix)",
		"upper(string)", "lower(string)",
		"keys(map)", "values(map)",
		"int(v)", "float(v)", "string(v)", "type(v)", "toJSON(v)", "fromJSON(string)",
		"now()", "date(string)", "duration(string)",
	} {
		name, rest, _ := strings.Cut(text, "(")

		sig := signature{name: name}
		if params := strings.TrimSuffix(rest, ")"); params != "" {
			sig.params = strings.Split(params, ", ")
		}

		sigs[name] = sig
	}

	return sigs
})

// exprBuiltinNames returns the names of the hinted expr-lang builtins.
func exprBuiltinNames() []string {
	return slices.Sorted(maps.Keys(exprSignatures()))
}

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // dotted function name, e.g. "path.join"
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall finds the innermost unclosed call whose parameter
// list contains cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open := -1
	depth := 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ". \t")
	if name == "" {
		return functionCall{}
	}

	call := functionCall{name: name, inCall: true}

	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call
}

// signatureOf returns the signature of the named function: a binding or
// interp builtin by reflection, else an expr-lang builtin.
func (s *session) signatureOf(name string) (signature, bool) {
	if v, ok := s.lookup(name); ok {
		return reflectSignature(name, v)
	}

	sig, ok := exprSignatures()[name]

	return sig, ok
}

// reflectSignature describes v by its parameter types.
func reflectSignature(name string, v any) (signature, bool) {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func {
		return signature{}, false
	}

	sig := signature{name: name, params: make([]string, t.NumIn())}

	for i := range t.NumIn() {
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			sig.params[i] = "..." + typeLabel(in.Elem())
		} else {
			sig.params[i] = typeLabel(in)
		}
	}

	return sig, true
}

// typeLabel names a parameter type the way expr-lang users think of it.
func typeLabel(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Pointer:
		return typeLabel(t.Elem())
	case reflect.Interface:
		return "any"
	default:
		return t.Kind().String()
	}
}

// renderSignatureHint renders sig with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(sig signature, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig.name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range sig.params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		current := argIndex == i || (strings.HasPrefix(param, "...") && argIndex >= i)
		if current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
