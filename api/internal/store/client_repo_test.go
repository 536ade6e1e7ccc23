package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pedidos-bot/api/internal/catalog"
)

func TestClientSearchWords(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"granjas del sur", []string{"granjas", "sur"}},
		{"LA Y DE", []string{"LA", "Y", "DE"}},
		{"a ana", []string{"ana"}},
		{"  pedro   ", []string{"pedro"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, clientSearchWords(tc.in), tc.in)
	}
}

func TestBuildClientQuery(t *testing.T) {
	q, args := buildClientQuery([]string{"granjas", "50%"})
	assert.Contains(t, q, "(nombres ilike $1 or apellidos ilike $1) or (nombres ilike $2 or apellidos ilike $2)")
	assert.Contains(t, q, "limit $3")
	assert.Equal(t, []any{"%granjas%", `%50\%%`, clientQueryLimit}, args)
}

func TestPreferExact(t *testing.T) {
	clients := []catalog.Client{
		{ID: 1, Name: "GRANJAS DEL SUR"},
		{ID: 2, Name: "SUR EXPRESS"},
		{ID: 3, Name: "Granjas del Sur Norte"},
	}
	got := preferExact(clients, "granjas del sur")
	assert.Equal(t, []int64{1, 3}, []int64{got[0].ID, got[1].ID})
	assert.Len(t, got, 2)

	assert.Len(t, preferExact(clients, "nada"), 3)

	many := make([]catalog.Client, 45)
	assert.Len(t, preferExact(many, "x"), clientResultLimit)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%BOLSA%", containsPattern("BOLSA"))
	assert.Equal(t, `%8\_12\\x%`, containsPattern(`8_12\x`))
}
