package dashboard

import "testing"

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{650.0 / 1265.0 * 100, "51.4%"},
		{0, "0.0%"},
		{100, "100.0%"},
		{12.35, "12.4%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(tc.in); got != tc.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPerCapita(t *testing.T) {
	if got := FormatPerCapita(0.57); got != "0.57 kg" {
		t.Fatalf("unexpected per capita %q", got)
	}
	if got := FormatPerCapita(1.005); got != "1.01 kg" {
		t.Fatalf("unexpected rounding %q", got)
	}
}

func TestRoundHelpers(t *testing.T) {
	if got := RoundPercent(48.0315); got != 48.0 {
		t.Fatalf("RoundPercent = %v", got)
	}
	if got := RoundPerCapita(0.456); got != 0.46 {
		t.Fatalf("RoundPerCapita = %v", got)
	}
	got := roundAll([]float64{1.26, 2.34}, 1)
	if got[0] != 1.3 || got[1] != 2.3 {
		t.Fatalf("roundAll = %v", got)
	}
}
