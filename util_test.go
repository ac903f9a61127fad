package main

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ace", "Ace"},
		{"  Ace  ", "Ace"},
		{"", defaultName},
		{"   ", defaultName},
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnop"},
		{"ééééééééééééééééééé", "éééééééééééééééé"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidWallet(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0x1234567890abcdef1234567890abcdef12345678", true},
		{"0xABCDEF7890abcdef1234567890abcdef12345678", true},
		{"", false},
		{"0x", false},
		{"1234567890abcdef1234567890abcdef12345678", false},
		{"0x1234567890abcdef1234567890abcdef1234567", false},
		{"0x1234567890abcdef1234567890abcdef123456789", false},
		{"0x1234567890abcdef1234567890abcdef1234567g", false},
		{"0X1234567890abcdef1234567890abcdef12345678", false},
	}
	for _, tt := range tests {
		if got := ValidWallet(tt.in); got != tt.want {
			t.Errorf("ValidWallet(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 36 {
			t.Fatalf("unexpected id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
