package bundle

import (
	"math/rand"
	"strings"
)

const hexDigits = "0123456789abcdef"

// RandomCalldata returns a 0x-prefixed hex string of the requested total
// length, floored at 10 characters (prefix plus a 4-byte selector). Used to
// generate synthetic traffic, not bundle data.
func RandomCalldata(length int) string {
	const minLength = 10
	if length < minLength {
		length = minLength
	}

	var sb strings.Builder
	sb.Grow(length)
	sb.WriteString("0x")
	for i := 2; i < length; i++ {
		sb.WriteByte(hexDigits[rand.Intn(len(hexDigits))])
	}
	return sb.String()
}
