package utils

import "strings"

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// MaskEmail hides most of the local part of an email address so it can
// appear in logs without identifying the account.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}
