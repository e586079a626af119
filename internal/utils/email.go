package utils

import (
	"strings"
)

// ExtractDomainFromEmail returns the lowercased domain part of an email
// address, or "" when the input has no usable domain. Angle-bracket forms
// like "Name <user@domain.com>" are unwrapped first.
func ExtractDomainFromEmail(email string) string {
	if email == "" {
		return ""
	}

	email = strings.TrimSpace(email)

	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	atIdx := strings.LastIndex(email, "@")
	if atIdx < 0 || atIdx == len(email)-1 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(email[atIdx+1:]))
}

// NormalizeEmailAddress lowercases and trims an address for storage keys.
func NormalizeEmailAddress(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
