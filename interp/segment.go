package interp

import (
	"strconv"
	"strings"
)

// Kind distinguishes literal text from embedded expressions.
type Kind int

const (
	Literal Kind = iota
	Expression
)

// String returns "literal" or "expression".
func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Expression:
		return "expression"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Segment is one unit of a scanned template.
type Segment struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Text is the raw literal text, or the trimmed expression source.
	Text string `json:"text" yaml:"text"`
	// Offset is the character index in the template where Text begins.
	Offset int `json:"offset" yaml:"offset"`
}

// String renders the segment as kind(text).
func (s Segment) String() string {
	return s.Kind.String() + "(" + strconv.Quote(s.Text) + ")"
}

// Expressions returns the source text of every Expression segment, in
// order.
func Expressions(segs []Segment) []string {
	var src []string

	for _, s := range segs {
		if s.Kind == Expression {
			src = append(src, s.Text)
		}
	}

	return src
}

// Join concatenates the literal text of segs with each expression
// rendered by eval. It is the reference semantics every emitter follows.
func Join(segs []Segment, eval func(i int, src string) string) string {
	var sb strings.Builder

	n := 0

	for _, s := range segs {
		switch s.Kind {
		case Literal:
			sb.WriteString(s.Text)

		case Expression:
			sb.WriteString(eval(n, s.Text))
			n++
		}
	}

	return sb.String()
}
