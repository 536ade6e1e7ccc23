package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"pedidos-bot/api/internal/session"
)

// autoDetect handles text typed with no order in progress: product-looking
// text with hits is answered as a lookup, anything else starts a client search.
func (e *Engine) autoDetect(ctx context.Context, u User, r Responder, text string) {
	if LooksLikeProduct(text) {
		if hits := e.products.Search(ctx, text); len(hits) > 0 {
			e.send(ctx, r, productHitsPrompt(text, hits))
			return
		}
	}
	e.searchClients(ctx, u, r, text, true)
}

// searchClients lists matching clients. With start set the user's session is
// replaced by one waiting for the pick; the pick itself is always explicit.
func (e *Engine) searchClients(ctx context.Context, u User, r Responder, text string, start bool) {
	clients, err := e.clients.SearchClients(ctx, text)
	if err != nil {
		e.log.Warn("client search failed", zap.Int64("user_id", u.ID), zap.Error(err))
		clients = nil
	}
	if len(clients) == 0 {
		e.send(ctx, r, clientsNotFoundPrompt(text))
		return
	}

	seen := make(map[string]bool, len(clients))
	names := make([]string, 0, maxClientOptions)
	for _, c := range clients {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		names = append(names, c.Name)
		if len(names) == maxClientOptions {
			break
		}
	}

	if start {
		e.sessions.Set(u.ID, &session.Session{
			Step:          session.StepPickClient,
			ClientQuery:   text,
			ClientOptions: names,
		})
	}
	e.send(ctx, r, clientListPrompt(text, names))
}

func (e *Engine) selectClient(ctx context.Context, u User, r Responder, name string) {
	if s, ok := e.sessions.Get(u.ID); ok {
		name = resolveClient(name, s.ClientOptions)
	}
	e.notice(ctx, r, "✅ "+name)

	e.sessions.Set(u.ID, &session.Session{Step: session.StepAwaitProducts, Client: name})
	e.edit(ctx, r, productsInstructionsPrompt(name))
}

// resolveClient maps a possibly truncated button payload back to the offered name.
func resolveClient(name string, options []string) string {
	var prefixed []string
	for _, o := range options {
		if o == name {
			return o
		}
		if strings.HasPrefix(o, name) {
			prefixed = append(prefixed, o)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0]
	}
	return name
}
