// Package match scores how well a listing satisfies a wishlist entry.
package match

import (
	"strings"
	"unicode"
)

// separators are treated as word boundaries in addition to whitespace.
const separators = "，。！？、；：“”‘’（）【】《》\",.!?;:()[]<>'"

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(separators, r)
}

func isCJK(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func allCJK(runes []rune) bool {
	for _, r := range runes {
		if !isCJK(r) {
			return false
		}
	}
	return true
}

// Tokenize splits text into distinct keywords in first-seen order. Runs made
// only of CJK ideographs yield every 2 to 4 character substring; any other
// run of two or more characters yields itself lowercased.
func Tokenize(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(tok string) {
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	for _, part := range strings.FieldsFunc(text, isSeparator) {
		runes := []rune(part)
		if len(runes) < 2 {
			continue
		}
		if !allCJK(runes) {
			add(strings.ToLower(part))
			continue
		}
		for i := 0; i < len(runes)-1; i++ {
			for n := 2; n <= 4 && i+n <= len(runes); n++ {
				add(string(runes[i : i+n]))
			}
		}
	}
	return out
}
