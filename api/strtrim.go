package api

import (
	"strings"
	"unicode/utf8"
)

// TrimToRect keeps at most maxHeight lines of at most maxWidth bytes,
// marking each cut with "[...]". Lines are never cut inside a UTF-8
// sequence.
func TrimToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(trimLine(line, maxWidth))
	}
	if cut {
		if len(lines) > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("[...]")
	}
	return sb.String()
}

func trimLine(line string, maxWidth int) string {
	if len(line) <= maxWidth {
		return line
	}
	n := max(maxWidth, 0)
	for n > 0 && !utf8.RuneStart(line[n]) {
		n--
	}
	return line[:n] + "[...]"
}
