package sliceutil

// Contains returns true if the slice contains the given element.
func Contains[T comparable](slice []T, element T) bool {
	for _, e := range slice {
		if e == element {
			return true
		}
	}
	return false
}

// RemoveDuplicates returns a new slice which contains the elements of
// the given slice in the same order, but without duplicates. The
// result is never nil.
func RemoveDuplicates[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	res := make([]T, 0, len(slice))
	for _, e := range slice {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		res = append(res, e)
	}
	return res
}
