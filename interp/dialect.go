package interp

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"unicode"
)

// Dialect is the delimiter and escape policy used to scan a template.
// It is plain data; every method is a pure function of its fields.
type Dialect struct {
	// Name identifies the dialect in configuration and cache keys.
	Name string
	// Open introduces an interpolation.
	Open rune
	// WrapOpen opens a wrapped expression when it directly follows Open.
	// Zero means Open itself opens the wrapped expression.
	WrapOpen rune
	// WrapClose closes a wrapped expression.
	WrapClose rune
	// Bare enables the $identifier form.
	Bare bool
}

// Predefined dialects.
var (
	// Dollar is the default dialect: ${expr} and $ident, with $$ for a
	// literal dollar sign.
	Dollar = Dialect{Name: "dollar", Open: '$', WrapOpen: '{', WrapClose: '}', Bare: true}
	// Brace is the {expr} dialect, with {{ and }} for literal braces.
	Brace = Dialect{Name: "brace", Open: '{', WrapClose: '}'}
	// Hash is the #{expr} dialect, with ## for a literal hash.
	Hash = Dialect{Name: "hash", Open: '#', WrapOpen: '{', WrapClose: '}'}
)

// DefaultDialect is used when no dialect is configured.
var DefaultDialect = Dollar

//nolint:gochecknoglobals
var dialects = map[string]Dialect{
	Dollar.Name: Dollar,
	Brace.Name:  Brace,
	Hash.Name:   Hash,
}

// LookupDialect returns the predefined dialect with the given name.
// The empty name selects [DefaultDialect].
func LookupDialect(name string) (Dialect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultDialect, nil
	}

	d, ok := dialects[name]
	if !ok {
		return Dialect{}, ErrUnknownDialect.With(
			slog.String("dialect", name),
			slog.String("valid", strings.Join(Dialects(), ",")),
		)
	}

	return d, nil
}

// Dialects returns the names of the predefined dialects in sorted order.
func Dialects() []string {
	return slices.Sorted(maps.Keys(dialects))
}

// IsOpenDelimiter reports whether r introduces an interpolation.
func (d Dialect) IsOpenDelimiter(r rune) bool { return r == d.Open }

// IsWrapOpen reports whether r opens a wrapped expression after Open.
func (d Dialect) IsWrapOpen(r rune) bool { return d.WrapOpen != 0 && r == d.WrapOpen }

// IsWrapClose reports whether r closes a wrapped expression.
func (d Dialect) IsWrapClose(r rune) bool { return r == d.WrapClose }

// IsBareIdentifierStart reports whether r may begin a bare expression.
// It approximates Unicode XID_Start plus underscore.
func (d Dialect) IsBareIdentifierStart(r rune) bool {
	return d.Bare && isIdentStart(r)
}

// IsBareIdentifierContinue reports whether r may continue a bare
// expression. It approximates Unicode XID_Continue.
func (d Dialect) IsBareIdentifierContinue(r rune) bool {
	return d.Bare && isIdentContinue(r)
}

// EscapePair returns the doubled sequences that stand for a single literal
// delimiter in literal text. The close sequence is empty unless Open
// itself opens wrapped expressions, because only then is a lone close
// character ambiguous.
func (d Dialect) EscapePair() (open, close string) {
	open = string([]rune{d.Open, d.Open})

	if d.WrapOpen == 0 && d.WrapClose != 0 {
		close = string([]rune{d.WrapClose, d.WrapClose})
	}

	return open, close
}

// String returns the dialect name.
func (d Dialect) String() string { return d.Name }

// Example renders a short sample of the dialect's syntax.
func (d Dialect) Example() string {
	var sb strings.Builder

	sb.WriteRune(d.Open)

	if d.WrapOpen != 0 {
		sb.WriteRune(d.WrapOpen)
	}

	sb.WriteString("expr")
	sb.WriteRune(d.WrapClose)

	if d.Bare {
		sb.WriteString(" ")
		sb.WriteRune(d.Open)
		sb.WriteString("ident")
	}

	return sb.String()
}

func isIdentStart(r rune) bool {
	return r == '_' ||
		unicode.IsLetter(r) ||
		unicode.Is(unicode.Nl, r) ||
		unicode.Is(unicode.Other_ID_Start, r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue)
}
