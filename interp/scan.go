package interp

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// state is the scanner's position in the interpolation grammar.
type state int

const (
	inLiteral    state = iota // copying literal text
	atDelimiter               // just consumed an open delimiter
	inWrapped                 // inside a wrapped expression
	inBare                    // inside a bare identifier expression
	afterWrapped              // just consumed a wrapped expression's close
)

// Scan splits template into segments using [DefaultDialect].
func Scan(template string) ([]Segment, error) {
	return DefaultDialect.Scan(template)
}

// Scan splits template into an ordered sequence of Literal and Expression
// segments in a single pass.
//
// Literal text is returned raw; see [Dialect.Normalize]. Every expression
// is preceded by a (possibly empty) Literal, so adjacent expressions are
// separated by an empty Literal. An empty template yields no segments and
// a template without delimiters yields exactly one Literal.
//
// On failure no segments are returned and the error matches
// [ErrUnterminatedExpression] or [ErrInvalidDelimiterFollower] and wraps a
// [*SyntaxError].
func (d Dialect) Scan(template string) ([]Segment, error) {
	s := scanner{dialect: d, template: template}

	var p pos

	for p.at < len(template) {
		r, w := utf8.DecodeRuneInString(template[p.at:])

		advance, err := s.step(p, r)
		if err != nil {
			return nil, err
		}

		if advance {
			p.at += w
			p.col++
		}
	}

	if err := s.finish(p); err != nil {
		return nil, err
	}

	return s.segs, nil
}

// pos is a cursor into the template. Text is sliced by byte so that
// invalid UTF-8 passes through unchanged; offsets are reported in
// characters, each invalid byte counting as one.
type pos struct {
	at  int // byte index
	col int // character index
}

// scanner holds the cursor for one call to Scan.
type scanner struct {
	dialect  Dialect
	template string
	segs     []Segment
	state    state

	litStart  pos // start of the current literal run
	delim     pos // position of the open delimiter
	exprStart pos
	exprEnd   pos
}

// step applies the transition for rune r at p. It returns false when r
// must be examined again in the new state, which happens when an
// expression ends without a closing delimiter of its own.
func (s *scanner) step(p pos, r rune) (bool, error) {
	d := s.dialect

	switch s.state {
	case inLiteral:
		if d.IsOpenDelimiter(r) {
			s.delim = p
			s.state = atDelimiter
		}
		// Any other rune is literal text.

		return true, nil

	case atDelimiter:
		switch {
		case d.IsOpenDelimiter(r):
			// Doubled delimiter: both runes stay in the literal run and are
			// collapsed by the normalizer.
			s.state = inLiteral

		case d.IsWrapOpen(r):
			s.exprStart = next(p, r)
			s.state = inWrapped

		case d.WrapOpen == 0 && d.IsWrapClose(r):
			s.exprStart, s.exprEnd = p, p
			s.state = afterWrapped

		case d.WrapOpen == 0:
			// The delimiter itself opened the region; r is expression text.
			s.exprStart = p
			s.state = inWrapped

		case d.IsBareIdentifierStart(r):
			s.exprStart = p
			s.state = inBare

		default:
			return false, syntaxError(ErrInvalidDelimiterFollower, s.template, p.col, r)
		}

		return true, nil

	case inWrapped:
		if d.IsWrapClose(r) {
			s.exprEnd = p
			s.state = afterWrapped
		}
		// Any other rune is expression text.

		return true, nil

	case inBare:
		if d.IsBareIdentifierContinue(r) {
			return true, nil
		}

		s.emit(p, p, false)
		s.state = inLiteral

		return false, nil

	case afterWrapped:
		if d.IsWrapClose(r) {
			// Doubled close: the pair belongs to the expression, which
			// continues to the next close.
			s.state = inWrapped

			return true, nil
		}

		s.emit(s.exprEnd, p, true)
		s.state = inLiteral

		return false, nil

	default:
		panic("interp: invalid scanner state")
	}
}

// next returns the position following rune r at p.
func next(p pos, r rune) pos {
	return pos{at: p.at + utf8.RuneLen(r), col: p.col + 1}
}

// finish handles the end of the template, at end, in the current state.
func (s *scanner) finish(end pos) error {
	switch s.state {
	case inLiteral:
		if s.litStart.at < end.at {
			s.literal(s.litStart, end)
		}

		return nil

	case inBare:
		s.emit(end, end, false)

		return nil

	case afterWrapped:
		s.emit(s.exprEnd, end, true)

		return nil

	case atDelimiter, inWrapped:
		return syntaxError(ErrUnterminatedExpression, s.template, end.col, 0).
			With(slog.Int("opened_at", s.delim.col+1))

	default:
		panic("interp: invalid scanner state")
	}
}

// emit appends the literal run before the current delimiter and the
// expression ending at exprEnd, then starts a new literal run at rest.
func (s *scanner) emit(exprEnd, rest pos, trim bool) {
	s.literal(s.litStart, s.delim)

	text := s.template[s.exprStart.at:exprEnd.at]
	offset := s.exprStart.col

	if trim {
		lead := strings.TrimLeftFunc(text, unicode.IsSpace)
		offset += utf8.RuneCountInString(text) - utf8.RuneCountInString(lead)
		text = strings.TrimRightFunc(lead, unicode.IsSpace)
	}

	s.segs = append(s.segs, Segment{Kind: Expression, Text: text, Offset: offset})
	s.litStart = rest
}

func (s *scanner) literal(from, to pos) {
	s.segs = append(s.segs, Segment{
		Kind:   Literal,
		Text:   s.template[from.at:to.at],
		Offset: from.col,
	})
}
