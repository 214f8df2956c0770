package parallel

// Monoid is an identity element together with an associative binary
// operator. Op(Identity, x) and Op(x, Identity) must both equal x.
type Monoid[T any] struct {
	Identity T
	Op       func(T, T) T
}

// Fold combines values from left to right, starting at the identity.
func (m Monoid[T]) Fold(values []T) T {
	acc := m.Identity
	for _, v := range values {
		acc = m.Op(acc, v)
	}
	return acc
}
