package conversation

import (
	"regexp"
	"strings"
)

var (
	reDims        = regexp.MustCompile(`\d+\s*[xX]\s*\d+`)
	reQtyFirst    = regexp.MustCompile(`^\d+\s+\S`)
	reTSize       = regexp.MustCompile(`(?i)\bT\s*\d+`)
	reCompact     = regexp.MustCompile(`\b\d{3,4}\b`)
	reLongNumber  = regexp.MustCompile(`\b\d{5,}\b`)
	reProductNoun = regexp.MustCompile(`(?i)\b(bolsa|negra|negro|blanca|blanco|rollo|camiseta|vaso|hermetica|opaca|fina|marcada|basurera)\b`)
)

// LooksLikeProduct guesses whether free text typed outside an order is a
// product lookup rather than a client name. Phone-like runs of 5+ digits
// do not count as compact sizes.
func LooksLikeProduct(text string) bool {
	t := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case reDims.MatchString(t),
		reQtyFirst.MatchString(t),
		reTSize.MatchString(t):
		return true
	case reCompact.MatchString(t) && !reLongNumber.MatchString(t):
		return true
	}
	return reProductNoun.MatchString(t)
}
