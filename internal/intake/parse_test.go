package intake

import "testing"

func TestParseMagnitude(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1.5b", 1_500_000_000},
		{"800m", 800_000_000},
		{"50k", 50_000},
		{"120000", 120_000},
		{"120,000", 120_000},
		{"1.2B", 1_200_000_000},
		{"  500m ", 500_000_000},
		{"idk", 0},
		{"", 0},
		{"12m5", 0},
		{"-5m", 0},
	}
	for _, tc := range cases {
		if got := ParseMagnitude(tc.in); got != tc.want {
			t.Errorf("ParseMagnitude(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPoints(t *testing.T) {
	cases := []struct {
		power, kp, deaths int64
		want              int64
	}{
		{0, 0, 0, 0},
		{1_500_000_000, 800_000_000, 120_000, 158_120},
		{10_000, 100_000, 1_000, 3},
		{9_999, 0, 0, 0},
	}
	for _, tc := range cases {
		if got := Points(tc.power, tc.kp, tc.deaths); got != tc.want {
			t.Errorf("Points(%d, %d, %d) = %d, want %d", tc.power, tc.kp, tc.deaths, got, tc.want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hola, quiero migrar", "es"},
		{"Buenas tardes", "es"},
		{"hello there", "en"},
		{"", "en"},
		{"HOLA", "es"},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.in); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
