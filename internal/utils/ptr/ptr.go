// Package ptr provides small helpers for taking the address of values.
package ptr

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Bool creates a pointer to the given bool value.
func Bool(b bool) *bool {
	return &b
}
