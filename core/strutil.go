package core

// Itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func Itoa(n int) string {
	if n < 0 {
		// -(n+1) cannot overflow, even for the most negative int
		return "-" + formatUint(uint64(-(n+1))+1)
	}
	return formatUint(uint64(n))
}

// Utoa converts an unsigned integer to a string
func Utoa(n uint32) string {
	return formatUint(uint64(n))
}

func formatUint(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// PadUtoa formats n with at least width digits, zero padded.
func PadUtoa(n uint32, width int) string {
	s := Utoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

const hexDigits = "0123456789ABCDEF"

// Hex formats n as "0x" followed by at least width upper-case hex digits.
func Hex(n uint32, width int) string {
	if width < 1 {
		width = 1
	}
	var buf [8]byte
	pos := len(buf)
	for n > 0 || len(buf)-pos < width {
		pos--
		buf[pos] = hexDigits[n&0xF]
		n >>= 4
		if pos == 0 {
			break
		}
	}
	return "0x" + string(buf[pos:])
}
