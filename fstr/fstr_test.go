package fstr

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/interp/interp"
)

func TestMarkersPanic(t *testing.T) {
	tests := []struct {
		name string
		call func()
	}{
		{NameS, func() { _ = S("Hello, $name") }},
		{NameP, func() { P("Hello, $name") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()

				err, ok := r.(*NotGeneratedError)
				if !ok {
					t.Fatalf("recovered %v, want *NotGeneratedError", r)
				}

				if err.Func != tt.name || !strings.Contains(err.Error(), `"Hello, $name"`) {
					t.Errorf("panic = %v", err)
				}
			}()

			tt.call()
		})
	}
}

func TestNotGeneratedError_Truncates(t *testing.T) {
	err := &NotGeneratedError{Func: NameS, Template: strings.Repeat("é", 40)}

	if !strings.Contains(err.Error(), strings.Repeat("é", 32)+`..."`) {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestEval(t *testing.T) {
	got, err := Eval("${first}${second}", map[string]any{"first": "Mickey", "second": "Mouse"})
	if err != nil || got != "MickeyMouse" {
		t.Errorf("Eval = %q, %v", got, err)
	}

	_, err = Eval("Hello ${name", nil)
	if !errors.Is(err, interp.ErrUnterminatedExpression) {
		t.Errorf("Eval error = %v", err)
	}
}

func TestImportPath(t *testing.T) {
	if !strings.HasSuffix(ImportPath, "/fstr") {
		t.Errorf("ImportPath = %q", ImportPath)
	}
}
