package main

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxNameLen  = 16
	defaultName = "Player"
)

// GenerateID returns a fresh connection id
func GenerateID() string {
	return uuid.NewString()
}

// SanitizeName trims a display name and caps it at maxNameLen runes
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultName
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}

// ValidWallet reports whether s looks like an Ethereum address: 0x and 40 hex digits
func ValidWallet(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
