package reactive

import "cmp"

// Gte returns a memo that reports src >= v.
func Gte[T cmp.Ordered](src Readable[T], v T) *Memo[bool] {
	return NewMemo(func() bool { return src.Get() >= v })
}

// Gt returns a memo that reports src > v.
func Gt[T cmp.Ordered](src Readable[T], v T) *Memo[bool] {
	return NewMemo(func() bool { return src.Get() > v })
}

// Lte returns a memo that reports src <= v.
func Lte[T cmp.Ordered](src Readable[T], v T) *Memo[bool] {
	return NewMemo(func() bool { return src.Get() <= v })
}

// Lt returns a memo that reports src < v.
func Lt[T cmp.Ordered](src Readable[T], v T) *Memo[bool] {
	return NewMemo(func() bool { return src.Get() < v })
}

// Eq returns a memo that reports src == v.
func Eq[T comparable](src Readable[T], v T) *Memo[bool] {
	return NewMemo(func() bool { return src.Get() == v })
}

// Not returns a memo holding the negation of src.
func Not(src Readable[bool]) *Memo[bool] {
	return NewMemo(func() bool { return !src.Get() })
}

// Derive returns a memo applying fn to src.
func Derive[T, R any](src Readable[T], fn func(T) R) *Memo[R] {
	return NewMemo(func() R { return fn(src.Get()) })
}
