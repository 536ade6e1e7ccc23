package matcher

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"pedidos-bot/api/internal/catalog"
	"pedidos-bot/api/internal/textnorm"
)

const (
	// MaxResults caps the candidates returned for one line.
	MaxResults = 6
	// fallbackVariants is how many variants of each token hit the external search.
	fallbackVariants = 3
)

// Match is a catalog product scored against one query.
type Match struct {
	catalog.Product
	Score float64 `json:"score"`
}

// Snapshot exposes the locally cached catalog.
type Snapshot interface {
	All() []catalog.Product
}

// Matcher resolves free-text product descriptions into ranked catalog matches.
type Matcher struct {
	cache  Snapshot
	source catalog.ProductSource
	log    *zap.Logger
}

func New(cache Snapshot, source catalog.ProductSource, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{cache: cache, source: source, log: log}
}

// Search scores the cached catalog first; when nothing survives it falls back
// to substring searches on the source and scores those rows the same way.
// Failures degrade to an empty result.
func (m *Matcher) Search(ctx context.Context, text string) []Match {
	tokens := strings.Fields(textnorm.Normalize(text))
	if len(tokens) == 0 {
		return nil
	}
	q := newQueryFromTokens(tokens)

	if m.cache != nil {
		if res := rank(q, m.cache.All()); len(res) > 0 {
			return res
		}
	}
	if m.source == nil {
		return nil
	}

	seen := make(map[string]bool)
	var rows []catalog.Product
	for _, tok := range tokens {
		vs := textnorm.Variants(tok)
		if len(vs) > fallbackVariants {
			vs = vs[:fallbackVariants]
		}
		for _, v := range vs {
			found, err := m.source.SearchProducts(ctx, v)
			if err != nil {
				m.log.Warn("product fallback search failed", zap.String("term", v), zap.Error(err))
				continue
			}
			for _, p := range found {
				if seen[p.Code] {
					continue
				}
				seen[p.Code] = true
				rows = append(rows, p)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return rank(q, rows)
}

func rank(q Query, products []catalog.Product) []Match {
	var out []Match
	for _, p := range products {
		if s := q.Score(p.Description); s > 0 {
			out = append(out, Match{Product: p, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}
