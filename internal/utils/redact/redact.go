// Package redact masks personal data and secrets before they reach the logs.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	// access keys and API tokens are long runs of key characters
	tokenPattern = regexp.MustCompile(`\b[A-Za-z0-9_-]{32,}\b`)
)

// Email replaces an address with a short stable hash so log lines about the
// same account can still be correlated.
func Email(email string) string {
	if email == "" {
		return ""
	}
	return fmt.Sprintf("[EMAIL:%s]", hash(email))
}

// Secret keeps the last four characters of values longer than eight.
func Secret(value string) string {
	switch {
	case value == "":
		return ""
	case len(value) <= 8:
		return "[REDACTED]"
	default:
		return "****" + value[len(value)-4:]
	}
}

// Text masks emails, IPv4 addresses and token-like strings inside free text
// such as upstream error messages.
func Text(input string) string {
	result := emailPattern.ReplaceAllStringFunc(input, Email)
	result = ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", hash(match))
	})
	return tokenPattern.ReplaceAllStringFunc(result, Secret)
}

func hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:8]
}
