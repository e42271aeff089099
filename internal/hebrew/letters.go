package hebrew

import (
	"regexp"
	"strings"
)

var finalToRegular = map[rune]rune{'ם': 'מ', 'ן': 'נ', 'ף': 'פ', 'ץ': 'צ', 'ך': 'כ'}

var regularToFinal = map[rune]rune{'מ': 'ם', 'נ': 'ן', 'פ': 'ף', 'צ': 'ץ', 'כ': 'ך'}

var hebrewWordRe = regexp.MustCompile(`[א-ת]+`)

func IsHebrewLetter(r rune) bool {
	return r >= 'א' && r <= 'ת'
}

func IsFinalLetter(r rune) bool {
	_, ok := finalToRegular[r]
	return ok
}

// Words returns the Hebrew letter runs in s, in order.
func Words(s string) []string {
	return hebrewWordRe.FindAllString(s, -1)
}

// NormalizeFinalLetters repairs final-form positions after a reversal: final
// forms may only stand at word end, and a word-final regular form that has a
// final variant takes it.
func NormalizeFinalLetters(s string) string {
	if s == "" {
		return s
	}
	words := strings.Split(s, " ")
	for wi, word := range words {
		runes := []rune(word)
		for i, r := range runes {
			if i == len(runes)-1 {
				if f, ok := regularToFinal[r]; ok {
					runes[i] = f
				}
				continue
			}
			if reg, ok := finalToRegular[r]; ok {
				runes[i] = reg
			}
		}
		words[wi] = string(runes)
	}
	return strings.Join(words, " ")
}

// Reverse reverses the rune order of s.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// SmartReverse reverses s and repairs final-letter positions, turning an
// OCR back-to-front run into readable Hebrew.
func SmartReverse(s string) string {
	return NormalizeFinalLetters(Reverse(s))
}
