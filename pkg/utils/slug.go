package utils

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SafeFilename reduces a report name to something usable inside a
// Content-Disposition header. Falls back to "report" for empty input.
func SafeFilename(s string) string {
	s = Slugify(s)
	s = strings.ReplaceAll(s, "-", "_")
	if s == "" {
		return "report"
	}
	return s
}
