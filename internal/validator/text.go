package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	phoneRE = regexp.MustCompile(`^\+?\d[\d\s\-]{7,}$`)
	latinRE = regexp.MustCompile(`[A-Za-z]`)
)

// ValidPersonName は3文字以上で、アラビア文字ブロックの文字と空白だけを許す。
func ValidPersonName(text string) bool {
	text = strings.TrimSpace(norm.NFC.String(text))
	if utf8.RuneCountInString(text) < 3 {
		return false
	}
	for _, r := range text {
		if r >= '\u0600' && r <= '\u06FF' {
			continue
		}
		if isSpace(r) {
			continue
		}
		return false
	}
	return true
}

// ValidPhone は先頭の + を任意で許し、数字1つ＋7文字以上の数字/空白/ハイフン。
func ValidPhone(text string) bool {
	text = strings.TrimSpace(NormalizeDigits(text))
	return phoneRE.MatchString(text)
}

// ValidAddressPart は minLen 文字以上で英字を含まないこと。
func ValidAddressPart(text string, minLen int) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minLen {
		return false
	}
	return !latinRE.MatchString(text)
}
