package tools

// PtrOf returns a pointer to a copy of v.
func PtrOf[T any](v T) *T {
	return &v
}

// ValueOf dereferences p, returning the zero value for nil.
func ValueOf[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
