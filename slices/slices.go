package slices

func Find[T any](slice []T, f func(T) bool) (T, bool) {
	for _, item := range slice {
		if f(item) {
			return item, true
		}
	}

	return *new(T), false
}

// Filter returns the items for which keep reports true, preserving order.
func Filter[T any](slice []T, keep func(T) bool) []T {
	out := make([]T, 0, len(slice))
	for _, item := range slice {
		if keep(item) {
			out = append(out, item)
		}
	}

	return out
}

func Map[T, R any](slice []T, f func(T) R) []R {
	out := make([]R, 0, len(slice))
	for _, item := range slice {
		out = append(out, f(item))
	}

	return out
}
