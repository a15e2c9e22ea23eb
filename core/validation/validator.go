package validation

// Validator checks a value and raises violations on the context. Nested
// checks are started with Launch.
type Validator[T any] func(c *Context, value T)

// All runs every validator against the same value.
func All[T any](validators ...Validator[T]) Validator[T] {
	return func(c *Context, value T) {
		for _, v := range validators {
			Launch(c, v, value)
		}
	}
}

// Predicate raises message if test fails.
func Predicate[T any](test func(T) bool, message string) Validator[T] {
	return func(c *Context, value T) {
		if !test(value) {
			c.Raise(message, nil)
		}
	}
}

// Check raises the message computed from value if test fails.
func Check[T any](test func(T) bool, message func(T) string) Validator[T] {
	return func(c *Context, value T) {
		if !test(value) {
			c.Raise(message(value), nil)
		}
	}
}

// Direct wraps a plain function returning zero or more violation messages.
func Direct[T any](fn func(T) []string) Validator[T] {
	return func(c *Context, value T) {
		for _, msg := range fn(value) {
			c.Raise(msg, nil)
		}
	}
}

// Map adapts a validator of U into a validator of T.
func Map[T, U any](v Validator[U], fn func(T) U) Validator[T] {
	return func(c *Context, value T) {
		v(c, fn(value))
	}
}

// Valid is a validator that never raises.
func Valid[T any]() Validator[T] {
	return func(*Context, T) {}
}
