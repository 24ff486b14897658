package functional

// Map applies fn to every element of in and returns the results in order.
func Map[T any, R any](in []T, fn func(T) R) []R {
	out := make([]R, len(in))
	for i, item := range in {
		out[i] = fn(item)
	}
	return out
}

// Filter returns the elements of in for which keep returns true.
func Filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, item := range in {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
