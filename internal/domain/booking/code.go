package booking

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet omits look-alike characters so codes survive being read over
// the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 8

// NewCode generates the human-readable reservation code, e.g. "CN-7KQ2MXVB".
// It doubles as the order reference handed to the payment provider.
func NewCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("booking: entropy read failed: %v", err))
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return "CN-" + string(buf)
}
