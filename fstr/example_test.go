package fstr_test

import (
	"fmt"

	"github.com/ardnew/interp/fstr"
)

func ExampleEval() {
	s, err := fstr.Eval("Lilo and $pal", map[string]any{"pal": "Stitch"})
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(s)
	// Output: Lilo and Stitch
}

func ExamplePrint() {
	_ = fstr.Print("${ducks[1]}", map[string]any{"ducks": []string{"Huey", "Dewey", "Louie"}})
	// Output: Dewey
}
