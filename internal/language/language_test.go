package language

import (
	"errors"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"tr", "tr"},
		// 3-letter codes convert
		{"eng", "en"},
		{"tur", "tr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"per", "fa"},
		// Word forms
		{"english", "en"},
		{"Turkish", "tr"},
		{"GERMAN", "de"},
		// Unknown 2-letter passes through
		{"xy", "xy"},
		// Unknown 3-letter returns empty
		{"xyz", ""},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO2(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"tr", "tur"},
		{"fr", "fra"},
		{"tur", "tur"},
		{"", "und"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO3(tt.input); got != tt.expected {
				t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"tr", "tr"},
		{"TR", "tr"},
		{"tr-TR", "tr"},
		{"Türkçe", "tr"},
		{"pt-BR", "pt"},
		{"zh-Hant", "zh"},
		{"sw", "sw"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not a language", "und"} {
		if _, err := Normalize(input); !errors.Is(err, ErrUnknownLanguage) {
			t.Errorf("Normalize(%q) error = %v, want ErrUnknownLanguage", input, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"tr", "Turkish"},
		{"eng", "English"},
		{"sw", "Swahili"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
