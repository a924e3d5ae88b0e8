package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RowIDLength is the length of ids given to cats and events.
const RowIDLength = 32

// NewID returns a row id.
func NewID() string {
	return RandomID(RowIDLength)
}

// RandomID returns a random alphanumeric string of length n, used for row
// ids and object key suffixes.
func RandomID(n int) string {
	if n <= 0 {
		n = RowIDLength
	}
	return gonanoid.MustGenerate(idAlphabet, n)
}
