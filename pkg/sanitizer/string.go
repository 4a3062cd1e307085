package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeCity(city string) string {
	return TrimAndNormalize(city)
}

func NormalizeEmail(email string) string {
	return trimAndLower(email)
}

var amenityAliases = map[string]string{
	"wifi":            "wifi",
	"internet":        "wifi",
	"coffee":          "coffee",
	"tea":             "coffee",
	"ac":              "ac",
	"airconditioning": "ac",
	"airconditioner":  "ac",
	"parking":         "parking",
	"meeting":         "meeting",
	"meetingroom":     "meeting",
	"meetingrooms":    "meeting",
	"conferenceroom":  "meeting",
	"conferencerooms": "meeting",
}

// NormalizeAmenity folds an amenity label onto its canonical key. Unknown
// labels are lowercased with separators removed, so validation can reject them.
func NormalizeAmenity(amenity string) string {
	key := Pipeline{trimAndLower, stripSeparators}.Apply(amenity)
	if canonical, ok := amenityAliases[key]; ok {
		return canonical
	}
	return key
}
