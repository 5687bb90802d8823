package interp

import "strings"

// Unescape collapses each doubled delimiter in literal text to a single
// character, left to right and without overlap. Text without escapes is
// returned unchanged.
func (d Dialect) Unescape(literal string) string {
	open, close := d.EscapePair()

	return collapse(literal, open, close)
}

// UnescapeExpression collapses doubled wrap-open and wrap-close characters
// inside expression source, so "${ {{"a": 1}}.a }" yields `{"a": 1}.a`.
func (d Dialect) UnescapeExpression(src string) string {
	if d.WrapClose == 0 {
		return src
	}

	open := d.WrapOpen
	if open == 0 {
		open = d.Open
	}

	return collapse(src,
		string([]rune{open, open}),
		string([]rune{d.WrapClose, d.WrapClose}),
	)
}

// Normalize returns a copy of segs with literal escapes and expression
// escapes collapsed. It is the form consumed by emitters.
func (d Dialect) Normalize(segs []Segment) []Segment {
	out := make([]Segment, len(segs))

	for i, s := range segs {
		switch s.Kind {
		case Literal:
			s.Text = d.Unescape(s.Text)
		case Expression:
			s.Text = d.UnescapeExpression(s.Text)
		}

		out[i] = s
	}

	return out
}

// collapse replaces every occurrence of each doubled sequence in pairs
// with its first half. Empty pairs are ignored.
func collapse(text string, pairs ...string) string {
	found := false

	for _, p := range pairs {
		if p != "" && strings.Contains(text, p) {
			found = true

			break
		}
	}

	if !found {
		return text
	}

	var sb strings.Builder

	sb.Grow(len(text))

scan:
	for i := 0; i < len(text); {
		for _, p := range pairs {
			if p != "" && strings.HasPrefix(text[i:], p) {
				sb.WriteString(p[:len(p)/2])
				i += len(p)

				continue scan
			}
		}

		sb.WriteByte(text[i])
		i++
	}

	return sb.String()
}
