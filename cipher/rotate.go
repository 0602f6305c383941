package cipher

// rotl61 rotates the 128-bit register (hi:lo) left by 61 bits, in place.
func rotl61(hi, lo *uint64) {
	h, l := *hi, *lo
	*hi = (h << 61) | (l >> 3)
	*lo = (l << 61) | (h >> 3)
}

// rotl67 rotates the 128-bit register (hi:lo) left by 67 bits, in place.
// Since 61+67 == 128, rotl67 undoes rotl61 and vice versa.
func rotl67(hi, lo *uint64) {
	h, l := *hi, *lo
	*hi = (l << 3) | (h >> 61)
	*lo = (h << 3) | (l >> 61)
}
