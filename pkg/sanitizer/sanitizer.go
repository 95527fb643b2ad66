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

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reNonAlnumASCII     = regexp.MustCompile(`[^A-Za-z0-9]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeSegment turns "Jóvenes 18-25" into "jóvenes_18_25".
func SanitizeSegment(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

func SanitizePromoCode(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		func(s string) string { return reNonAlnumASCII.ReplaceAllString(s, "") },
		strings.ToUpper,
	}
	return p.Apply(input)
}

func SanitizeID(input string) string {
	return trimAndLower(input)
}

func SanitizeIDs(ids []string) []string {
	return NormalizeStringSlice(ids, SanitizeID)
}
