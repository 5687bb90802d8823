package interp

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// Sentinel errors. Use [errors.Is] to test for them; every error derived
// with [Error.Wrap] or [Error.With] still matches its sentinel.
var (
	// ErrInvalidInvocation reports an interpolation call that did not receive
	// exactly one string literal.
	ErrInvalidInvocation = NewError("invalid invocation")
	// ErrRawLiteralRejected reports a raw (backquoted) string literal.
	ErrRawLiteralRejected = NewError("raw string literals are not supported")
	// ErrUnterminatedExpression reports a wrapped expression, or a
	// delimiter, that reaches the end of the template unclosed.
	ErrUnterminatedExpression = NewError("interpolated expression is not closed")
	// ErrInvalidDelimiterFollower reports a character after a delimiter that
	// can neither open a wrapped expression nor start an identifier.
	ErrInvalidDelimiterFollower = NewError("invalid character after delimiter")
	// ErrInvalidExpressionSource reports expression text that does not parse.
	ErrInvalidExpressionSource = NewError("invalid expression")

	ErrEvaluate            = NewError("expression evaluation failed")
	ErrUndefinedIdentifier = NewError("undefined identifier")
	ErrUnknownDialect      = NewError("unknown dialect")
	ErrUnknownStrategy     = NewError("unknown emit strategy")
	ErrInvalidFormat       = NewError("invalid format")
	ErrReadTemplate        = NewError("failed to read template")
)

// Error is an error with an optional cause and structured logging
// attributes. It implements [slog.LogValuer].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	kind  *Error // sentinel this error derives from
}

// NewError creates a sentinel Error.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError returns err as an *Error, unwrapping to an existing *Error in
// its chain if there is one.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

// Error returns "msg: cause", omitting whichever part is empty.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e derives from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.kind != nil && t == e.kind
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs, kind: e.kind}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(merged, e.attrs...)
	merged = append(merged, attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: merged, kind: e.kind}
}

// SyntaxError locates a scanning failure within a template.
type SyntaxError struct {
	Template string
	Offset   int  // character index of the offending rune, or of the end
	Rune     rune // offending rune; 0 at end of template
}

// Error names the column (1-based) and the offending character.
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	sb.WriteString("column ")
	sb.WriteString(strconv.Itoa(e.Offset + 1))

	if e.Rune == 0 {
		sb.WriteString(": unexpected end of template")
	} else {
		sb.WriteString(": unexpected ")
		sb.WriteString(describeRune(e.Rune))
	}

	return sb.String()
}

// Snippet renders the template on one line with a caret under the
// offending character. Templates containing newlines are shown from the
// start of the offending line.
func (e *SyntaxError) Snippet() string {
	runes := []rune(e.Template)

	start := 0
	for i := min(e.Offset, len(runes)) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			start = i + 1

			break
		}
	}

	end := len(runes)
	for i := start; i < len(runes); i++ {
		if runes[i] == '\n' {
			end = i

			break
		}
	}

	var sb strings.Builder

	sb.WriteString("  | ")
	sb.WriteString(string(runes[start:end]))
	sb.WriteString("\n  | ")
	sb.WriteString(strings.Repeat(" ", max(0, e.Offset-start)))
	sb.WriteString("^")

	return sb.String()
}

func describeRune(r rune) string {
	if unicode.IsPrint(r) {
		return strconv.QuoteRune(r)
	}

	return strconv.QuoteRuneToASCII(r)
}

func syntaxError(sentinel *Error, template string, offset int, r rune) *Error {
	attrs := []slog.Attr{slog.Int("column", offset+1)}
	if r != 0 {
		attrs = append(attrs, slog.String("char", string(r)))
	}

	return sentinel.
		Wrap(&SyntaxError{Template: template, Offset: offset, Rune: r}).
		With(attrs...)
}
