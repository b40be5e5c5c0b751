package tokenizer

import (
	"reflect"
	"strings"
	"testing"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"only whitespace", "   \t\n", []string{}},
		{"plural is stemmed", "Rooms", []string{"room"}},
		{"duplicates are kept", "room rooms", []string{"room", "room"}},
		{"possessive and punctuation", "The Quiet Room's WiFi!", []string{"quiet", "room", "wifi"}},
		{"symbols split words", "A/C, hot-water & parking", []string{"hot", "water", "park"}},
		{"domain fillers are stop words", "on at in of the", []string{}},
		{"short tokens are dropped", "ac tv a room", []string{"room"}},
		{"numbers survive", "room 101", []string{"room", "101"}},
		{"only symbols", "!@#$%^&*()", []string{}},
		{"curly apostrophe possessive", "owner’s room", []string{"owner", "room"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Terms(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Terms(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"joined with single spaces", "  Quiet   room,   WiFi ", "quiet room wifi"},
		{"stop words only", "the of at", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_SameStemForInflections(t *testing.T) {
	pairs := [][2]string{
		{"rooms", "room"},
		{"Boarding houses", "boarding house"},
		{"furnished", "furnish"},
		{"students", "student"},
	}

	for _, p := range pairs {
		if Normalize(p[0]) != Normalize(p[1]) {
			t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q; want equal",
				p[0], Normalize(p[0]), p[1], Normalize(p[1]))
		}
	}
}

// Stemming a stem is not guaranteed to be a no-op, but the pipeline must settle
// after at most one extra pass for listing-like text.
func TestNormalize_ReachesFixedPoint(t *testing.T) {
	inputs := []string{
		"Spacious furnished rooms near the university with attached bathrooms",
		"WiFi Palace",
		"Students' boarding houses in Kandy, 5 minutes to campus",
		"Annex for girls: kitchen, laundry & parking available!",
		"",
	}

	for _, input := range inputs {
		first := Normalize(input)
		second := Normalize(first)
		third := Normalize(second)
		if third != second {
			t.Errorf("Normalize did not settle for %q: %q -> %q -> %q", input, first, second, third)
		}
	}
}

func TestTerms_NeverEmitsShortOrStopTokens(t *testing.T) {
	text := "It is on the 2nd floor of an old house at Peradeniya; no AC but a fan."
	for _, term := range Terms(text) {
		if len([]rune(term)) < minTokenLength {
			t.Errorf("Terms(%q) emitted short token %q", text, term)
		}
		if strings.TrimSpace(term) != term || term == "" {
			t.Errorf("Terms(%q) emitted malformed token %q", text, term)
		}
	}
}
