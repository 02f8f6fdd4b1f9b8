// Package client routes chat calls to OpenAI, Anthropic or Google Gemini by
// the provider named in a [nollama.Model].
//
// Provider SDK clients are built on first use, so a session that only talks
// to one provider never touches the others' credentials. Calls that fail for
// transient reasons are retried with backoff (see Config.Retry).
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	})
//
//	resp, err := c.Chat(ctx, model.ClaudeSonnet45.Model(), []nollama.Message{
//	    nollama.NewUserMessage("Hello!"),
//	})
//
// ListModels asks a provider for its chat models and falls back to the
// catalog in the model package when the listing is unavailable.
//
// # Events
//
// When Config.Events is set, every call reports its start, its outcome and
// any retries. Sends never block; events are dropped when the channel is
// full. Event implements slog.LogValuer and suggests a level:
//
//	for e := range events {
//	    logger.Log(ctx, e.Level(), "client event", "event", e)
//	}
package client
