package matcher

import (
	"regexp"
	"strconv"
	"strings"

	"pedidos-bot/api/internal/textnorm"
)

var (
	reWordSplit = regexp.MustCompile(`[\s\-/]+`)
	rePackToken = regexp.MustCompile(`^X?(\d+)$`)

	rePack10  = regexp.MustCompile(`\bX\s*10\b`)
	rePack50  = regexp.MustCompile(`\bX\s*50\b`)
	rePack100 = regexp.MustCompile(`\bX\s*100\b`)
)

// Query is a normalized search prepared for scoring many descriptions.
type Query struct {
	tokens   []queryToken
	sizeHint bool // a token already names a pack size (X10, 50, ...)
}

type queryToken struct {
	variants []textnorm.Flex
}

// NewQuery splits normalized text into tokens and precompiles their variants.
func NewQuery(text string) Query {
	return newQueryFromTokens(strings.Fields(textnorm.Normalize(text)))
}

func newQueryFromTokens(tokens []string) Query {
	q := Query{tokens: make([]queryToken, 0, len(tokens))}
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		vs := textnorm.Variants(tok)
		qt := queryToken{variants: make([]textnorm.Flex, len(vs))}
		for i, v := range vs {
			qt.variants[i] = textnorm.CompileFlex(v)
		}
		q.tokens = append(q.tokens, qt)

		if m := rePackToken.FindStringSubmatch(tok); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 10 {
				q.sizeHint = true
			}
		}
	}
	return q
}

// Empty reports whether the query has no tokens.
func (q Query) Empty() bool { return len(q.tokens) == 0 }

// Score rates description against the query tokens; 0 means rejected.
func Score(description string, tokens []string) float64 {
	return newQueryFromTokens(tokens).Score(description)
}

// Score rates description against q; 0 means rejected.
//
// A token is found when one of its variants occurs in the normalized
// description (len*3) or, for variants of 3+ chars, prefixes one of its
// words (len*2). Single-token queries need full coverage, longer ones half.
func (q Query) Score(description string) float64 {
	if len(q.tokens) == 0 {
		return 0
	}
	desc := textnorm.Normalize(description)
	words := reWordSplit.Split(desc, -1)

	found := 0
	total := 0
	for _, tok := range q.tokens {
		if s := tok.best(desc, words); s > 0 {
			found++
			total += s
		}
	}

	coverage := float64(found) / float64(len(q.tokens))
	minCoverage := 0.5
	if len(q.tokens) == 1 {
		minCoverage = 1.0
	}
	if coverage < minCoverage {
		return 0
	}

	score := float64(total) * coverage
	if !q.sizeHint {
		score += packBonus(strings.ToUpper(description))
	}
	return score
}

// best returns the weight of the first variant that matches.
func (t queryToken) best(desc string, words []string) int {
	for _, v := range t.variants {
		n := v.Needle()
		if v.In(desc) {
			return len(n) * 3
		}
		if len(n) >= 3 {
			for _, w := range words {
				if strings.HasPrefix(w, n) {
					return len(n) * 2
				}
			}
		}
	}
	return 0
}

// packBonus prefers the smallest presentation when the user did not ask for one.
func packBonus(descUpper string) float64 {
	switch {
	case rePack10.MatchString(descUpper):
		return 5
	case rePack50.MatchString(descUpper):
		return -2
	case rePack100.MatchString(descUpper):
		return -3
	}
	return 0
}
