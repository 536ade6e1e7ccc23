package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLines(t *testing.T) {
	cases := []struct {
		in   string
		want []Line
	}{
		{"10 bolsa 8x12 negra", []Line{{10, "bolsa 8x12 negra"}}},
		{"camiseta x5", []Line{{5, "camiseta"}}},
		{"vaso", []Line{{1, "vaso"}}},
		{"3x vaso", []Line{{3, "vaso"}}},
		{"vaso X 12", []Line{{12, "vaso"}}},
		{"  \n\n 2 rollo \n\t\nvaso  ", []Line{{2, "rollo"}, {1, "vaso"}}},
		{"0 vaso", []Line{{1, "vaso"}}},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLines(tc.in), tc.in)
	}
}

func TestLooksLikeProduct(t *testing.T) {
	yes := []string{"8x12 negra", "10 bolsas", "t40", "T 20 blanca", "bolsa 812", "Hermetica", "camiseta"}
	no := []string{"granjas del sur", "juan perez", "tel 5512345678", "maria"}
	for _, s := range yes {
		assert.True(t, LooksLikeProduct(s), s)
	}
	for _, s := range no {
		assert.False(t, LooksLikeProduct(s), s)
	}
}
