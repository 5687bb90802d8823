package interp_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ardnew/interp/interp"
)

func ExampleInterpolate() {
	s, err := interp.Interpolate(context.Background(),
		"$name is the star of ${name}.", map[string]any{"name": "Aladdin"})
	if err != nil {
		fmt.Println(err)

		return
	}

	fmt.Println(s)
	// Output: Aladdin is the star of Aladdin.
}

func ExampleCompile() {
	p := interp.MustCompile("${lilo} and ${ pals[0] }")

	fmt.Println(p.Identifiers())

	s, _ := p.Run(context.Background(), map[string]any{
		"lilo": "Lilo",
		"pals": []string{"Stitch"},
	})
	fmt.Println(s)
	// Output:
	// [lilo pals]
	// Lilo and Stitch
}

func ExampleEmitter() {
	d := interp.DefaultDialect

	segs, _ := d.Scan("Hello, $name! ${n}% done")

	fmt.Println(interp.Emitter{}.Emit(d.Normalize(segs)))
	fmt.Println(interp.Emitter{Print: true}.Emit(d.Normalize(segs)))
	// Output:
	// fmt.Sprintf("Hello, %v! %v%% done", name, n)
	// fmt.Printf("Hello, %v! %v%% done\n", name, n)
}

func ExampleSyntaxError_Snippet() {
	_, err := interp.Scan("costs $5")

	fmt.Println(err)

	var se *interp.SyntaxError
	if errors.As(err, &se) {
		fmt.Println(se.Snippet())
	}
	// Output:
	// invalid character after delimiter: column 8: unexpected '5'
	//   | costs $5
	//   |        ^
}

func ExampleFormatSegments() {
	segs, _ := interp.Scan("Hi ${ who }!")

	_ = interp.FormatSegments(context.Background(), os.Stdout, segs, "text", 0)
	// Output:
	// 1   literal     "Hi "
	// 7   expression  "who"
	// 12  literal     "!"
}
