package conversation

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxActionData is the Telegram limit for callback data.
const MaxActionData = 64

type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionNewOrder
	ActionShowProducts
	ActionHelp
	ActionSelectClient
	ActionSearchAgain
	ActionConfirmLine
	ActionPickCandidate
	ActionSkipLine
	ActionRetryLine
	ActionNormalPrice
	ActionSpecialPrice
	ActionEditQty
	ActionRemoveItem
	ActionAddMore
	ActionConfirmOrder
	ActionNoNote
	ActionCancel
)

// wire names; changing them breaks buttons already sent to users
var actionNames = map[ActionKind]string{
	ActionNewOrder:      "nuevo_pedido",
	ActionShowProducts:  "ver_productos",
	ActionHelp:          "cmd_ayuda",
	ActionSelectClient:  "sel_cli",
	ActionSearchAgain:   "buscar_otro_cliente",
	ActionConfirmLine:   "prod_ok",
	ActionPickCandidate: "prod_sel",
	ActionSkipLine:      "prod_skip",
	ActionRetryLine:     "prod_retry",
	ActionNormalPrice:   "precio_normal",
	ActionSpecialPrice:  "precio_especial",
	ActionEditQty:       "prod_edit_qty",
	ActionRemoveItem:    "prod_remove",
	ActionAddMore:       "agregar_mas_productos",
	ActionConfirmOrder:  "orden_confirmar",
	ActionNoNote:        "orden_sin_nota",
	ActionCancel:        "orden_cancelar",
}

var actionByName = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(actionNames))
	for k, v := range actionNames {
		m[v] = k
	}
	return m
}()

func (k ActionKind) String() string {
	if n, ok := actionNames[k]; ok {
		return n
	}
	return "unknown"
}

// Action is a decoded button press.
//
// Line is the pending-line index for line actions and the confirmed-item
// index for ActionRemoveItem. Choice is the candidate position for
// ActionPickCandidate.
type Action struct {
	Kind   ActionKind
	Line   int
	Choice int
	Code   string
	Client string
}

func SelectClient(name string) Action { return Action{Kind: ActionSelectClient, Client: name} }
func ConfirmLine(line int, code string) Action { return Action{Kind: ActionConfirmLine, Line: line, Code: code} }
func PickCandidate(line, choice int) Action { return Action{Kind: ActionPickCandidate, Line: line, Choice: choice} }
func LineAction(k ActionKind, line int) Action { return Action{Kind: k, Line: line} }
func Simple(k ActionKind) Action { return Action{Kind: k} }

// Encode renders a as callback data, cut to MaxActionData bytes.
func (a Action) Encode() string {
	name := actionNames[a.Kind]
	var s string
	switch a.Kind {
	case ActionSelectClient:
		s = name + ":" + a.Client
	case ActionConfirmLine:
		s = name + ":" + strconv.Itoa(a.Line) + ":" + a.Code
	case ActionPickCandidate:
		s = name + ":" + strconv.Itoa(a.Line) + ":" + strconv.Itoa(a.Choice)
	case ActionSkipLine, ActionRetryLine, ActionNormalPrice, ActionSpecialPrice, ActionEditQty, ActionRemoveItem:
		s = name + ":" + strconv.Itoa(a.Line)
	case ActionUnknown:
		return ""
	default:
		s = name
	}
	return truncate(s, MaxActionData)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// DecodeAction parses callback data. Anything malformed yields ActionUnknown.
func DecodeAction(data string) Action {
	name, rest, hasArgs := strings.Cut(data, ":")
	kind, ok := actionByName[name]
	if !ok {
		return Action{}
	}

	switch kind {
	case ActionSelectClient:
		if !hasArgs || strings.TrimSpace(rest) == "" {
			return Action{}
		}
		return SelectClient(rest)

	case ActionConfirmLine:
		idx, code, ok := strings.Cut(rest, ":")
		line, okLine := index(idx)
		if !hasArgs || !ok || !okLine {
			return Action{}
		}
		return ConfirmLine(line, code)

	case ActionPickCandidate:
		idx, ch, ok := strings.Cut(rest, ":")
		line, okLine := index(idx)
		choice, okChoice := index(ch)
		if !hasArgs || !ok || !okLine || !okChoice {
			return Action{}
		}
		return PickCandidate(line, choice)

	case ActionSkipLine, ActionRetryLine, ActionNormalPrice, ActionSpecialPrice, ActionEditQty, ActionRemoveItem:
		line, ok := index(rest)
		if !hasArgs || !ok {
			return Action{}
		}
		return LineAction(kind, line)

	default:
		if hasArgs {
			return Action{}
		}
		return Simple(kind)
	}
}

func index(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
