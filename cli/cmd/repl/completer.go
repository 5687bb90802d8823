package repl

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/interp/interp"
)

// ctrlCommands are the available control-mode commands.
//
//nolint:gochecknoglobals
var ctrlCommands = []string{"help", "vars", "set", "unset", "dialect", "edit", "clear", "quit"}

// isWordBoundary reports whether r ends a completion word: white space,
// the member-access dot, expr-lang punctuation, and the delimiter runes of
// every dialect.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '^',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'$', '#', '"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte boundaries
// within input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word at
// wordStart. For "x + server.http.ho" with the word "ho" it is
// "server.http"; top-level words have no parent.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]

	chain, ok := strings.CutSuffix(prefix, ".")
	if !ok {
		return ""
	}

	pos := len(chain)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(chain[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(chain[pos:], ".")
}

// computeMatches ranks the candidates for the word at the cursor. An empty
// word matches nothing at the top level, so the hint line stays visible,
// and everything after a dot, so members can be browsed.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	switch {
	case m.mode == modeCtrl:
		candidates = ctrlCandidates(input[:wordStart])

	default:
		parent := parentPath(input, wordStart)
		candidates = m.sess.names(parent)

		if word == "" && parent != "" {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}
	}

	if word == "" || len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// ctrlCandidates completes command names, and dialect names after
// "dialect".
func ctrlCandidates(before string) []string {
	fields := strings.Fields(before)

	switch {
	case len(fields) == 0:
		return ctrlCommands
	case len(fields) == 1 && fields[0] == "dialect":
		return interp.Dialects()
	default:
		return nil
	}
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isFunc(match.Str))

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w+lipgloss.Width(ellipsis) > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a candidate with its matched characters
// highlighted and a "()" suffix for functions.
func renderCandidate(match fuzzy.Match, selected, fn bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if fn {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// isFunction reports whether a top-level name or dotted path is callable.
func (s *session) isFunction(name string) bool {
	if _, ok := s.vars[name]; !ok {
		if _, ok := builtin.Index[name]; ok {
			return true
		}
	}

	v, ok := s.lookup(name)

	return ok && v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
