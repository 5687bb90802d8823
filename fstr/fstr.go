// Package fstr marks string literals for interpolation.
//
// Calls to [S] and [P] with a single quoted string literal are rewritten by
// the interp generator into ordinary Go code, so
//
//	msg := fstr.S("Hello, ${user.Name}! You have $count messages.")
//
// becomes
//
//	msg := fmt.Sprintf("Hello, %v! You have %v messages.", user.Name, count)
//
// A file using the markers normally carries the build constraint
// "//go:build interp", which the generated copy inverts. S and P panic if
// they are ever executed.
//
// [Eval] and [Print] interpolate templates at run time instead, with
// expressions written in expr-lang syntax and evaluated against a map.
package fstr

import (
	"context"
	"os"

	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/pkg"
)

// ImportPath is the path the generator looks for when resolving marker
// calls.
const ImportPath = pkg.ImportPath + "/fstr"

// Names of the marker functions.
const (
	NameS = "S"
	NameP = "P"
)

// NotGeneratedError is the panic value of an unexpanded marker call.
type NotGeneratedError struct {
	Func     string
	Template string
}

func (e *NotGeneratedError) Error() string {
	return "fstr." + e.Func + "(" + quote(e.Template) + ") was not expanded; " +
		"run go generate or build with the generated files"
}

// S marks template for expansion by the generator, which replaces the
// call with code that interpolates template and yields the result. Calling
// S itself panics with a [*NotGeneratedError].
func S(template string) string {
	panic(&NotGeneratedError{Func: NameS, Template: template})
}

// P marks template for expansion by the generator, which replaces the
// call with code that prints the interpolated template and a newline.
// Calling P itself panics with a [*NotGeneratedError].
func P(template string) {
	panic(&NotGeneratedError{Func: NameP, Template: template})
}

// Eval interpolates template at run time using the bindings in env.
func Eval(template string, env map[string]any, opts ...interp.Option) (string, error) {
	return interp.Interpolate(context.Background(), template, env, opts...)
}

// Print interpolates template at run time and writes the result and a
// newline to standard output.
func Print(template string, env map[string]any, opts ...interp.Option) error {
	return interp.Fprint(context.Background(), os.Stdout, template, env, opts...)
}

func quote(s string) string {
	const limit = 32

	r := []rune(s)
	if len(r) > limit {
		return `"` + string(r[:limit]) + `..."`
	}

	return `"` + s + `"`
}
