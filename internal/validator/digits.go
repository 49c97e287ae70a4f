package validator

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ペルシア数字・アラビア・インド数字を ASCII に寄せる
var digitFolder = runes.Map(func(r rune) rune {
	switch {
	case r >= '\u06F0' && r <= '\u06F9':
		return '0' + (r - '\u06F0')
	case r >= '\u0660' && r <= '\u0669':
		return '0' + (r - '\u0660')
	}
	return r
})

// NormalizeDigits は数字以外の文字はそのまま残す。
func NormalizeDigits(s string) string {
	out, _, err := transform.String(digitFolder, s)
	if err != nil {
		return s
	}
	return out
}

// DigitsOnly は正規化したうえで ASCII 数字だけを残す。
func DigitsOnly(s string) string {
	s = NormalizeDigits(s)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}
