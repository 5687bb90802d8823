package pkg

// Option is a functional option that returns a modified copy of T.
type Option[T any] func(T) T

// Apply applies each non-nil option to v in order.
func Apply[T any](v T, opts ...Option[T]) T {
	for _, opt := range opts {
		if opt != nil {
			v = opt(v)
		}
	}

	return v
}

// Must panics if err is non-nil and otherwise returns v.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}

	return v
}
