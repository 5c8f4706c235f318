package mathx

// CeilDiv returns ceil(a/b) for positive integers.
// b == 0 yields 0.
func CeilDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
