package envelope

import "crypto/subtle"

// addChecked returns a+b and reports whether the addition stayed within
// uint64 range. Size accumulation must never wrap silently.
func addChecked(a, b uint64) (uint64, bool) {
	sum := a + b

	return sum, sum >= a
}

// constantTimeEqual reports whether a and b are equal without
// short-circuiting on the first differing byte. Unequal lengths compare
// unequal immediately; lengths are not secret here, only contents.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare(a, b) == 1
}

// wipe zeroes b. Secrets handed to this package are cleared on every exit
// path once consumed; callers own the durable copies.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
