package helpers

import "testing"

func TestFormatINR(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"zero", 0, "₹0"},
		{"under a thousand", 500, "₹500"},
		{"thousand boundary", 1000, "₹1,000"},
		{"four digits", 1234, "₹1,234"},
		{"lakh", 123456, "₹1,23,456"},
		{"ten lakh", 1234567, "₹12,34,567"},
		{"crore", 123456789, "₹12,34,56,789"},
		{"fraction truncates", 999.99, "₹999"},
		{"negative", -1234567, "₹-12,34,567"},
		{"negative small", -500, "₹-500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatINR(tt.amount); got != tt.expected {
				t.Errorf("FormatINR(%v): expected %q, got %q", tt.amount, tt.expected, got)
			}
		})
	}
}
