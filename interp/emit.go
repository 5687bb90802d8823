package interp

import (
	"log/slog"
	"strconv"
	"strings"
)

// Strategy selects the shape of generated Go code.
type Strategy int

const (
	// StrategyFormat emits fmt.Sprintf with one %v per expression.
	StrategyFormat Strategy = iota
	// StrategyBuilder emits a func literal appending to a strings.Builder.
	StrategyBuilder
)

var strategyName = [...]string{StrategyFormat: "format", StrategyBuilder: "builder"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyName) {
		return "Strategy(" + strconv.Itoa(int(s)) + ")"
	}

	return strategyName[s]
}

// Strategies returns the names of all emit strategies.
func Strategies() []string { return strategyName[:] }

// ParseStrategy returns the strategy with the given name. The empty name
// selects [StrategyFormat].
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StrategyFormat, nil
	}

	for i, n := range strategyName {
		if n == name {
			return Strategy(i), nil
		}
	}

	return 0, ErrUnknownStrategy.With(
		slog.String("strategy", name),
		slog.String("valid", strings.Join(Strategies(), ",")),
	)
}

// Emitter renders normalized segments as Go source.
//
// The generated code evaluates every expression exactly once, left to
// right, and uses only the fmt and strings packages.
type Emitter struct {
	Strategy Strategy
	// Print makes the result a call that writes the string and a newline to
	// standard output instead of an expression yielding the string.
	Print bool
}

// Emit returns Go source for segs, which must already be normalized with
// [Dialect.Normalize]. Expression text is inserted verbatim.
func (e Emitter) Emit(segs []Segment) string {
	exprs := Expressions(segs)

	if len(exprs) == 0 {
		lit := strconv.Quote(Join(segs, nil))
		if e.Print {
			return "fmt.Println(" + lit + ")"
		}

		return lit
	}

	switch e.Strategy {
	case StrategyBuilder:
		code := emitBuilder(segs, exprs)
		if e.Print {
			return "fmt.Println(" + code + ")"
		}

		return code

	default:
		format, args := FormatArgs(segs)
		if e.Print {
			return "fmt.Printf(" + strconv.Quote(format+"\n") + ", " + strings.Join(args, ", ") + ")"
		}

		return "fmt.Sprintf(" + strconv.Quote(format) + ", " + strings.Join(args, ", ") + ")"
	}
}

// FormatArgs returns a fmt format string with a %v verb per expression,
// literal percent signs doubled, and the expression sources in order.
func FormatArgs(segs []Segment) (format string, args []string) {
	var sb strings.Builder

	for _, s := range segs {
		switch s.Kind {
		case Literal:
			sb.WriteString(strings.ReplaceAll(s.Text, "%", "%%"))

		case Expression:
			sb.WriteString("%v")

			args = append(args, s.Text)
		}
	}

	return sb.String(), args
}

func emitBuilder(segs []Segment, exprs []string) string {
	buf := builderName(exprs)

	var sb strings.Builder

	sb.WriteString("func() string {\n")
	sb.WriteString("var " + buf + " strings.Builder\n")

	for _, s := range segs {
		switch s.Kind {
		case Literal:
			if s.Text != "" {
				sb.WriteString(buf + ".WriteString(" + strconv.Quote(s.Text) + ")\n")
			}

		case Expression:
			sb.WriteString("fmt.Fprint(&" + buf + ", " + s.Text + ")\n")
		}
	}

	sb.WriteString("return " + buf + ".String()\n")
	sb.WriteString("}()")

	return sb.String()
}

// builderName picks a buffer variable name that no expression mentions.
func builderName(exprs []string) string {
	name := "b"

	for {
		taken := false

		for _, x := range exprs {
			if strings.Contains(x, name) {
				taken = true

				break
			}
		}

		if !taken {
			return name
		}

		name += "_"
	}
}
