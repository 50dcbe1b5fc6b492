package utils

// Value dereferences v, returning T's zero value when v is nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v, for optional fields built from literals
// or flag values.
func Ptr[T any](v T) *T {
	return &v
}
