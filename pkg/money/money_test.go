package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.005, 1.0}, // 1.005 is stored just below .005, rounds down
		{1.015, 1.02},
		{99.999, 100},
		{-2.345, -2.35},
		{1234.5, 1234.5},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	// French locale: comma decimal separator, non-breaking space for
	// thousands (exact space variant depends on the CLDR release).
	got := Format(1234.5)
	if got != "1 234,50" && got != "1 234,50" {
		t.Errorf("Format(1234.5) = %q", got)
	}
	if got := Format(0); got != "0,00" {
		t.Errorf("Format(0) = %q", got)
	}
	if got := FormatEUR(10); got != "10,00 €" {
		t.Errorf("FormatEUR(10) = %q", got)
	}
}
