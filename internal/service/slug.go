package service

import (
	"strings"
	"unicode"
)

// Slugify нормализует строку в URL-слаг: нижний регистр, только
// [a-z0-9-], пробелы/подчёркивания/дефисы схлопываются в один дефис,
// краевые дефисы отрезаются.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	lastDash := true // подавляет ведущий дефис

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastDash = false
		case r == ' ', r == '_', r == '-':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
