package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedidos-bot/api/internal/conversation"
)

func TestKeyboard(t *testing.T) {
	assert.Nil(t, keyboard(nil))
	assert.Nil(t, keyboard([][]conversation.Button{{}}))

	kb := keyboard([][]conversation.Button{
		{
			{Label: "✅ Confirmar", Action: conversation.Simple(conversation.ActionConfirmOrder)},
			{Label: "❌ Cancelar", Action: conversation.Simple(conversation.ActionCancel)},
		},
		{},
		{{Label: "Juan", Action: conversation.SelectClient("Juan Pérez")}},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 2)

	b := kb.InlineKeyboard[0][0]
	assert.Equal(t, "✅ Confirmar", b.Text)
	require.NotNil(t, b.CallbackData)
	assert.Equal(t, conversation.ActionConfirmOrder, conversation.DecodeAction(*b.CallbackData).Kind)

	sel := conversation.DecodeAction(*kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "Juan Pérez", sel.Client)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "hola", clip("hola"))
	long := strings.Repeat("ñ", maxMessageLen+10)
	got := []rune(clip(long))
	assert.Len(t, got, maxMessageLen+1)
	assert.Equal(t, '…', got[len(got)-1])
}
