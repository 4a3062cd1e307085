package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func stripSeparators(s string) string {
	return reKeepLettersDigits.ReplaceAllString(s, "")
}
