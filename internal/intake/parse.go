package intake

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var magnitudeRe = regexp.MustCompile(`^([0-9.]+)([kmb])?$`)

// ParseMagnitude converts player-typed stat values into absolute numbers:
// "1.5b" => 1_500_000_000, "800m" => 800_000_000, "50k" => 50_000,
// "120,000" => 120_000. Anything unparsable yields 0 — intake never rejects
// a stat answer, reviewers see whatever the screenshots prove.
func ParseMagnitude(input string) int64 {
	s := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(input, ",", "")))
	m := magnitudeRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	mult := 1.0
	switch m[2] {
	case "k":
		mult = 1e3
	case "m":
		mult = 1e6
	case "b":
		mult = 1e9
	}
	return int64(math.Round(num * mult))
}

// Points scores a request for the reviewer summary.
func Points(power, kp, deaths int64) int64 {
	return int64(math.Floor(float64(power)/10_000 + float64(kp)/100_000 + float64(deaths)/1_000))
}

// DetectLanguage picks the session language from the greeting. Spanish
// greetings switch the whole flow to Spanish; everything else stays English.
func DetectLanguage(content string) string {
	lowered := strings.ToLower(content)
	if strings.Contains(lowered, "hola") || strings.Contains(lowered, "buenas") {
		return "es"
	}
	return "en"
}
