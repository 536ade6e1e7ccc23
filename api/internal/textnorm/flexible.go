package textnorm

import (
	"regexp"
	"strings"
)

// Flex is a needle prepared for separator-tolerant matching.
type Flex struct {
	needle string
	re     *regexp.Regexp // nil when the needle has no letter/digit boundary
}

// CompileFlex prepares needle once so it can be tested against many haystacks.
func CompileFlex(needle string) Flex {
	n := strings.ToUpper(needle)
	f := Flex{needle: n}
	if n == "" {
		return f
	}

	var b strings.Builder
	b.WriteString("(?i)")
	boundaries := 0
	var prev rune
	for i, c := range n {
		if i > 0 && (isLetter(prev) && isDigit(c) || isDigit(prev) && isLetter(c)) {
			b.WriteString(`[\s\-/]?`)
			boundaries++
		}
		b.WriteString(regexp.QuoteMeta(string(c)))
		prev = c
	}
	if boundaries > 0 {
		f.re = regexp.MustCompile(b.String())
	}
	return f
}

// Needle returns the upper-cased needle.
func (f Flex) Needle() string { return f.needle }

// In reports whether the needle occurs in haystack.
func (f Flex) In(haystack string) bool {
	if f.needle == "" || haystack == "" {
		return false
	}
	h := strings.ToUpper(haystack)
	if strings.Contains(h, f.needle) {
		return true
	}
	return f.re != nil && f.re.MatchString(h)
}

// FlexibleContains reports whether needle occurs in haystack, allowing an
// optional space, hyphen or slash wherever needle switches between a letter
// and a digit.
//
//	"T40"  matches "T40", "T 40", "T-40"
//	"8X12" matches "8 X 12", "8-X-12"
func FlexibleContains(haystack, needle string) bool {
	return CompileFlex(needle).In(haystack)
}

func isLetter(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
