package pkg

import (
	"strings"
)

// Errors collects independent failures, such as one per input file, in
// the order they occurred.
//
// Unlike [errors.Join] the message is a single line per error and nil
// entries are never stored.
type Errors []error

// Add appends err if it is non-nil.
func (e *Errors) Add(err error) {
	if err != nil {
		*e = append(*e, err)
	}
}

// Err returns nil if e is empty, the only error if it holds one, or e.
func (e Errors) Err() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	default:
		return e
	}
}

// Error returns each message on its own line.
func (e Errors) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Unwrap returns the collected errors for [errors.Is] and [errors.As].
func (e Errors) Unwrap() []error { return e }
