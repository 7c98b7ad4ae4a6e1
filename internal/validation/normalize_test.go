package validation_test

import (
	"testing"

	"github.com/JaimeStill/agrocheck/internal/validation"
)

func TestNormalizeHS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0804.40.00", "080440"},
		{"0804.50.20", "08045020"},
		{"080440", "080440"},
		{"HS 0804 40 00 10", "080440"},
		{"0810.90.90", "08109090"},
		{"12", "12"},
		{"", ""},
		{"sin código", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := validation.NormalizeHS(tt.in); got != tt.want {
				t.Errorf("NormalizeHS(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Peru", "PE"},
		{"Perú", "PE"},
		{"PE", "PE"},
		{"pe", "PE"},
		{"pe (Perú)", "PE"},
		{"  República del Perú ", "PE"},
		{"US", "US"},
		{"chile", "CHILE"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := validation.NormalizeCountry(tt.in); got != tt.want {
				t.Errorf("NormalizeCountry(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"12,5", 12.5, true},
		{"0,750", 0.75, true},
		{"1.234.567", 1234567, true},
		{"1.234.567,89", 1234567.89, true},
		{"1,234", 1.234, true},
		{"1.234", 1234, true},
		{"12.000 kg", 12000, true},
		{"S/ 1.500", 1500, true},
		{"100.50", 100.5, true},
		{"1,234,567", 1234567, true},
		{"S/ 2.500,00", 2500, true},
		{"USD 18,450.00", 18450, true},
		{"12.5 kg", 12.5, true},
		{"1200", 1200, true},
		{"-3,5", -3.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"--", 0, false},
		{"1-2", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := validation.ParseAmount(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
