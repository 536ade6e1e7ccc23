package conversation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestAction_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		a    Action
		wire string
	}{
		{"new order", Simple(ActionNewOrder), "nuevo_pedido"},
		{"products", Simple(ActionShowProducts), "ver_productos"},
		{"help", Simple(ActionHelp), "cmd_ayuda"},
		{"select client", SelectClient("GRANJAS DEL SUR"), "sel_cli:GRANJAS DEL SUR"},
		{"search again", Simple(ActionSearchAgain), "buscar_otro_cliente"},
		{"confirm", ConfirmLine(2, "B-812"), "prod_ok:2:B-812"},
		{"confirm code with colon", ConfirmLine(0, "A:1"), "prod_ok:0:A:1"},
		{"pick", PickCandidate(1, 4), "prod_sel:1:4"},
		{"skip", LineAction(ActionSkipLine, 3), "prod_skip:3"},
		{"retry", LineAction(ActionRetryLine, 0), "prod_retry:0"},
		{"normal", LineAction(ActionNormalPrice, 5), "precio_normal:5"},
		{"special", LineAction(ActionSpecialPrice, 5), "precio_especial:5"},
		{"edit qty", LineAction(ActionEditQty, 1), "prod_edit_qty:1"},
		{"remove", LineAction(ActionRemoveItem, 0), "prod_remove:0"},
		{"add more", Simple(ActionAddMore), "agregar_mas_productos"},
		{"confirm order", Simple(ActionConfirmOrder), "orden_confirmar"},
		{"no note", Simple(ActionNoNote), "orden_sin_nota"},
		{"cancel", Simple(ActionCancel), "orden_cancelar"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wire, tc.a.Encode())
			assert.Equal(t, tc.a, DecodeAction(tc.wire))
		})
	}
}

func TestDecodeAction_Malformed(t *testing.T) {
	for _, data := range []string{
		"",
		"whatever",
		"prod_ok",
		"prod_ok:x:CODE",
		"prod_ok:1",
		"prod_sel:1",
		"prod_sel:1:-2",
		"prod_skip:",
		"prod_skip:-1",
		"prod_remove:abc",
		"sel_cli:",
		"sel_cli",
		"orden_cancelar:1",
	} {
		assert.Equal(t, ActionUnknown, DecodeAction(data).Kind, data)
	}
}

func TestAction_EncodeTruncatesOnRuneBoundary(t *testing.T) {
	name := strings.Repeat("Ñ", 40)
	data := SelectClient(name).Encode()
	assert.LessOrEqual(t, len(data), MaxActionData)
	assert.True(t, utf8.ValidString(data))

	got := DecodeAction(data)
	assert.Equal(t, ActionSelectClient, got.Kind)
	assert.True(t, strings.HasPrefix(name, got.Client))

	assert.Empty(t, Action{}.Encode())
}

func TestResolveClient(t *testing.T) {
	opts := []string{"GRANJAS DEL SUR SOCIEDAD ANONIMA", "GRANJAS DEL NORTE", "GRANJAS"}
	assert.Equal(t, "GRANJAS", resolveClient("GRANJAS", opts))
	assert.Equal(t, "GRANJAS DEL SUR SOCIEDAD ANONIMA", resolveClient("GRANJAS DEL SUR SOC", opts))
	assert.Equal(t, "GRANJAS DEL", resolveClient("GRANJAS DEL", opts), "ambiguous prefix stays as sent")
	assert.Equal(t, "OTRO", resolveClient("OTRO", nil))
}
