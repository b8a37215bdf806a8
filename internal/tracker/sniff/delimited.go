package sniff

import (
	"strings"
	"unicode/utf8"
)

// delimiters in detection priority
var delimiters = []string{",", "\t", ";", "|"}

// DetectDelimiter returns the first delimiter present in line, or a comma
func DetectDelimiter(line string) string {
	for _, d := range delimiters {
		if strings.Contains(line, d) {
			return d
		}
	}
	return ","
}

// ParseHeaderLine splits a raw first line into column names. The result is
// never empty.
func ParseHeaderLine(raw []byte) []string {
	if !utf8.Valid(raw) {
		return []string{DecodeError}
	}
	line := strings.TrimSpace(string(raw))

	fields := strings.Split(line, DetectDelimiter(line))
	for i, f := range fields {
		fields[i] = unquote(strings.TrimSpace(f))
	}
	return fields
}

// unquote strips one surrounding pair of double quotes
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
