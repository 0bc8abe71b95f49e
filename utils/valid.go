// utils/valid.go
package utils

import (
	"strings"
	"unicode"
)

// MaxNoteLength caps free-text admin notes stored on ledger rows
const MaxNoteLength = 500

// SanitizeNote trims, drops control characters and truncates to MaxNoteLength runes.
// Notes are rendered escaped by the dashboard, so no HTML escaping happens here.
func SanitizeNote(input string) string {
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return -1
		}
		return r
	}, input)
	input = strings.TrimSpace(input)

	if runes := []rune(input); len(runes) > MaxNoteLength {
		input = strings.TrimSpace(string(runes[:MaxNoteLength]))
	}
	return input
}
