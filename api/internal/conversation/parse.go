package conversation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reLeadingQty  = regexp.MustCompile(`^(\d+)\s*[xX]?\s+(.+)$`)
	reTrailingQty = regexp.MustCompile(`^(.+?)\s*[xX]\s*(\d+)$`)
)

// Line is one "quantity description" entry typed by the user.
type Line struct {
	Qty  int
	Desc string
}

// ParseLines reads one product per non-blank line:
//
//	10 bolsa 8x12 negra   -> 10, "bolsa 8x12 negra"
//	camiseta x5           -> 5, "camiseta"
//	vaso                  -> 1, "vaso"
//
// Quantities below 1 or too large for int fall back to 1.
func ParseLines(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}
		if m := reLeadingQty.FindStringSubmatch(l); m != nil {
			out = append(out, Line{Qty: qty(m[1]), Desc: strings.TrimSpace(m[2])})
			continue
		}
		if m := reTrailingQty.FindStringSubmatch(l); m != nil {
			out = append(out, Line{Qty: qty(m[2]), Desc: strings.TrimSpace(m[1])})
			continue
		}
		out = append(out, Line{Qty: 1, Desc: l})
	}
	return out
}

func qty(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
