package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	rePunct      = regexp.MustCompile(`[.,;:!?()\[\]{}]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reCompactDim = regexp.MustCompile(`\b\d{3,4}\b`)
)

// Normalize returns the canonical comparable form of a product text:
// upper case, no diacritics, punctuation turned into spaces, single spaces,
// and compact dimension codes expanded ("812" -> "8X12", "1216" -> "12X16").
func Normalize(s string) string {
	t := stripMarks(strings.ToUpper(s))
	t = rePunct.ReplaceAllString(t, " ")
	t = reSpaces.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	return reCompactDim.ReplaceAllStringFunc(t, expandDimension)
}

func stripMarks(s string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tr, s)
	if err != nil {
		return s
	}
	return out
}

// expandDimension splits a 3–4 digit run into (1–2 digits)(2 digits) and
// rewrites it as AXB when both sides look like a bag size.
func expandDimension(m string) string {
	split := len(m) - 2
	a, errA := strconv.Atoi(m[:split])
	b, errB := strconv.Atoi(m[split:])
	if errA != nil || errB != nil {
		return m
	}
	if a >= 4 && a <= 50 && b >= 4 && b <= 50 && b > a {
		return strconv.Itoa(a) + "X" + strconv.Itoa(b)
	}
	return m
}

// Variants returns the gender/number siblings of an upper-case Spanish word.
// The word itself always comes first.
//
//	BLANCO -> BLANCO BLANCA BLANCOS
//	BOLSAS -> BOLSAS BOLSOS BOLSA
func Variants(word string) []string {
	out := []string{word}
	add := func(v string) {
		for _, x := range out {
			if x == v {
				return
			}
		}
		out = append(out, v)
	}

	if strings.HasSuffix(word, "A") && !strings.HasSuffix(word, "IA") {
		add(word[:len(word)-1] + "O")
	}
	if strings.HasSuffix(word, "O") {
		add(word[:len(word)-1] + "A")
	}
	if strings.HasSuffix(word, "AS") {
		add(word[:len(word)-2] + "OS")
	}
	if strings.HasSuffix(word, "OS") {
		add(word[:len(word)-2] + "AS")
	}
	if strings.HasSuffix(word, "S") && len(word) > 2 && !strings.HasSuffix(word, "SS") {
		add(word[:len(word)-1])
	}
	if !strings.HasSuffix(word, "S") {
		add(word + "S")
	}
	return out
}
