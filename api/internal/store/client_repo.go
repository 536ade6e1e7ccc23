package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"pedidos-bot/api/internal/catalog"
)

const (
	clientQueryLimit  = 50
	clientResultLimit = 30
	clientMinQueryLen = 2
)

var clientStopWords = map[string]bool{
	"LA": true, "EL": true, "DE": true, "DEL": true, "LOS": true, "LAS": true, "Y": true,
}

type ClientRepo struct{ DB *sql.DB }

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

// clientSearchWords keeps the meaningful words of text (2+ chars, not an
// article or connector). When none are left every word is used.
func clientSearchWords(text string) []string {
	words := strings.Fields(text)
	var keep []string
	for _, w := range words {
		if len([]rune(w)) >= 2 && !clientStopWords[strings.ToUpper(w)] {
			keep = append(keep, w)
		}
	}
	if len(keep) == 0 {
		return words
	}
	return keep
}

// buildClientQuery matches active clients where any word appears in the
// given or family names.
func buildClientQuery(words []string) (string, []any) {
	conds := make([]string, len(words))
	args := make([]any, 0, len(words)+1)
	for i, w := range words {
		n := "$" + strconv.Itoa(i+1)
		conds[i] = "(nombres ilike " + n + " or apellidos ilike " + n + ")"
		args = append(args, containsPattern(w))
	}
	args = append(args, clientQueryLimit)
	q := `
select id, trim(nombres), trim(apellidos), telefono
from clientes
where activo
  and (` + strings.Join(conds, " or ") + `)
order by nombres
limit $` + strconv.Itoa(len(words)+1)
	return q, args
}

// preferExact keeps only the clients whose full name contains the whole
// query when there is at least one, then caps the list.
func preferExact(clients []catalog.Client, text string) []catalog.Client {
	needle := strings.ToUpper(strings.TrimSpace(text))
	var exact []catalog.Client
	for _, c := range clients {
		if strings.Contains(strings.ToUpper(c.Name), needle) {
			exact = append(exact, c)
		}
	}
	if len(exact) > 0 {
		clients = exact
	}
	if len(clients) > clientResultLimit {
		clients = clients[:clientResultLimit]
	}
	return clients
}

// SearchClients finds active clients by name. Queries shorter than two characters return nothing.
func (r *ClientRepo) SearchClients(ctx context.Context, text string) ([]catalog.Client, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < clientMinQueryLen {
		return nil, nil
	}
	words := clientSearchWords(text)
	if len(words) == 0 {
		return nil, nil
	}

	q, args := buildClientQuery(words)
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []catalog.Client
	for rows.Next() {
		var (
			c             catalog.Client
			given, family string
		)
		if err := rows.Scan(&c.ID, &given, &family, &c.Phone); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.Name = strings.TrimSpace(given + " " + family)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return preferExact(out, text), nil
}
