package autolink

import "strconv"

// superscriptDigits maps ASCII digits to their Unicode superscript
// glyphs.
var superscriptDigits = map[rune]rune{
	'0': '⁰',
	'1': '¹',
	'2': '²',
	'3': '³',
	'4': '⁴',
	'5': '⁵',
	'6': '⁶',
	'7': '⁷',
	'8': '⁸',
	'9': '⁹',
	'+': '⁺',
	'-': '⁻',
}

// superscript renders n using Unicode superscript glyphs.
func superscript(n int) string {
	out := make([]rune, 0, 4)
	for _, r := range strconv.Itoa(n) {
		if sup, ok := superscriptDigits[r]; ok {
			out = append(out, sup)
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
