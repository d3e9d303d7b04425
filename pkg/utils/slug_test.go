package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "About Us", "about-us"},
		{"punctuation", "Donate Now!", "donate-now"},
		{"collapses runs", "a  --  b", "a-b"},
		{"unicode stripped", "Café Menu", "caf-menu"},
		{"leading and trailing", "  ~News~  ", "news"},
		{"digits kept", "2025 Gala", "2025-gala"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to underscores", "Major Donors Q1", "major_donors_q1"},
		{"already safe", "donations", "donations"},
		{"empty falls back", "", "report"},
		{"symbols fall back", "???", "report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.input); got != tt.want {
				t.Errorf("SafeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
