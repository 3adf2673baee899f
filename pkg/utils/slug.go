package utils

import (
	"regexp"
	"strings"
)

var (
	codeSeparators = regexp.MustCompile(`[\s_]+`)
	codeDashes     = regexp.MustCompile(`-+`)
)

// CanonicalizeCode приводит код оборудования к каноническому виду.
// " xray_room 01 " -> "XRAY-ROOM-01"
func CanonicalizeCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = codeSeparators.ReplaceAllString(s, "-")
	s = codeDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
