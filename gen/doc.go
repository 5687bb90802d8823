// Package gen rewrites Go source files that use the fstr marker package
// into plain Go.
//
// Two forms are expanded. Calls to fstr.S and fstr.P with a single quoted
// string literal are replaced by the code an [interp.Emitter] produces for
// the literal:
//
//	fstr.S("$first and ${second}")  =>  fmt.Sprintf("%v and %v", first, second)
//	fstr.P("total: ${n}%")          =>  fmt.Printf("total: %v%%\n", n)
//
// And inside a function declared directly after an //interp:fstring
// directive, every identifier f written immediately before a string
// literal is expanded the same way:
//
//	//interp:fstring
//	func greet(name string) string {
//		return f"Hello, $name!"
//	}
//
// Expressions are parsed as Go expressions and inserted unchanged apart
// from formatting; they are evaluated exactly once, left to right. The
// result is passed through goimports, receives a "Code generated" header,
// and has its "interp" build constraint inverted so that the hand-written
// file and its generated twin are never compiled together.
package gen
