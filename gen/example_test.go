package gen_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/ardnew/interp/gen"
	"github.com/ardnew/interp/log"
)

func ExampleGenerator_Source() {
	src := `//go:build interp

package greet

import "github.com/ardnew/interp/fstr"

func Greet(name string) string {
	return fstr.S("Hello, $name!")
}
`

	out, err := gen.New(gen.WithLogger(log.Logger{})).
		Source(context.Background(), "greet.go", []byte(src))
	if err != nil {
		fmt.Println(err)

		return
	}

	for line := range strings.Lines(string(out)) {
		if strings.Contains(line, "build") || strings.Contains(line, "return") {
			fmt.Print(strings.TrimSpace(line), "\n")
		}
	}
	// Output:
	// //go:build !interp
	// return fmt.Sprintf("Hello, %v!", name)
}
