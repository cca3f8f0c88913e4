package xslices

import "golang.org/x/exp/slices"

func Filter[T any, S ~[]T](s S, f func(T) bool) (r S) {
	r = make(S, 0, len(s))
	for _, v := range s {
		if f(v) {
			r = append(r, v)
		}
	}
	return r
}

// Remove removes the first occurrence of v from s, preserving the
// order of the remaining elements.
func Remove[T comparable, S ~[]T](s S, v T) S {
	i := slices.Index(s, v)
	if i < 0 {
		return s
	}
	return slices.Delete(s, i, i+1)
}

// MoveToBack moves the first occurrence of v to the end of s.
func MoveToBack[T comparable, S ~[]T](s S, v T) S {
	i := slices.Index(s, v)
	if i < 0 {
		return s
	}
	copy(s[i:], s[i+1:])
	s[len(s)-1] = v
	return s
}
