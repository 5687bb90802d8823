// Package interp splits string templates into literal text and embedded
// expressions, and turns the result into Go code or evaluates it directly.
//
// # Syntax
//
// The default [Dialect], [Dollar], accepts wrapped and bare expressions:
//
//	"Hello, ${user.Name}!"   // wrapped: any expression up to the closing brace
//	"Hello, $name!"          // bare: an identifier, ended by the first non-identifier rune
//	"costs $$5"              // $$ is a literal $
//
// [Brace] uses {expr} with {{ and }} for literal braces, and [Hash] uses
// #{expr} with ## for a literal hash. Leading and trailing white space
// inside a wrapped expression is ignored. A doubled closing brace inside a
// wrapped expression stands for one brace in the expression source, so
// "${ {{"a": 1}}.a }" reads the expression `{"a": 1}.a`.
//
// # Pipeline
//
// [Dialect.Scan] produces [Segment] values in a single pass,
// [Dialect.Normalize] collapses escapes, and an [Emitter] renders Go
// source using either fmt.Sprintf ([StrategyFormat]) or a strings.Builder
// ([StrategyBuilder]). The gen package applies this pipeline to Go files.
//
// # Runtime templates
//
// [Compile] runs the same pipeline but compiles each expression with
// expr-lang, producing a [Program] that can be evaluated many times:
//
//	p, err := interp.Compile("${first} has ${len(items)} items")
//	s, err := p.Run(ctx, map[string]any{"first": "Ana", "items": []int{1, 2}})
//
// Runtime expressions may call a small set of builtins (env, path.join,
// file.exists, mung.prefix, ...). See [Builtins].
package interp
