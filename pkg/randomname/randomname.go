package randomname

import (
	"crypto/rand"
	mathrand "math/rand"
)

// FilenameLength is the length of names produced by Filename.
const FilenameLength = 12

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxValidatorAttempts bounds Validated before returning the last attempt.
const maxValidatorAttempts = 100

// Filename returns a random alphanumeric name suitable for a saved file.
func Filename() string {
	return Alphanumeric(FilenameLength)
}

// Alphanumeric returns a random string of length n drawn uniformly from
// [A-Za-z0-9]. Rejection sampling keeps the selection bias-free.
func Alphanumeric(n int) string {
	if n <= 0 {
		return ""
	}

	// Largest multiple of len(alphabet) that fits in a byte; values at or
	// above it would bias the low characters and are rejected.
	const limit = byte(256 - 256%len(alphabet))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			fallbackFill(buf)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// Validated generates names of length n until validate accepts one,
// giving up after a bounded number of attempts and returning the last
// candidate.
func Validated(n int, validate func(string) bool) string {
	var name string
	for i := 0; i < maxValidatorAttempts; i++ {
		name = Alphanumeric(n)
		if validate == nil || validate(name) {
			return name
		}
	}
	return name
}

// fallbackFill covers the unlikely case of crypto/rand failing; names are
// still usable for temp-file naming, just not cryptographically strong.
func fallbackFill(buf []byte) {
	for i := range buf {
		buf[i] = byte(mathrand.Intn(256))
	}
}
