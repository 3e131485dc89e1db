// Package randomname generates random alphanumeric names using
// cryptographically secure randomness.
//
// It backs the randomly named destination files of the save pipeline, and
// is suitable anywhere a collision-resistant, filesystem-safe short name
// is needed. Selection is bias-free via rejection sampling over
// crypto/rand, with a math/rand fallback only if the system entropy
// source fails.
//
// Basic usage:
//
//	name := randomname.Filename()       // "h3K9mQ2xPwZa"
//	long := randomname.Alphanumeric(24) // custom length
//
// Names can be constrained with a validation callback:
//
//	name := randomname.Validated(12, func(s string) bool {
//		return !strings.HasPrefix(s, "tmp")
//	})
package randomname
