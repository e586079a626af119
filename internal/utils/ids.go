package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNanoIDWithPrefix builds ids like "acct_4f90d1e2a7b3c8d9".
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, _ := gonanoid.Generate(nanoidAlphabet, length)
	return prefix + "_" + id
}
