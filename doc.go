// Package nollama holds the types shared by the nollama terminal chat client.
//
// nollama forwards prompts to hosted LLM providers (OpenAI, Anthropic and
// Google Gemini) and renders the responses as markdown in the terminal. This
// package defines the vocabulary the rest of the program speaks:
//
//   - [Message] and [Role]: turns of a conversation
//   - [ChatProvider]: batch and streaming completion against one provider
//   - [ModelLister]: dynamic model discovery for one provider
//   - [Provider] and [Model]: the provider enumeration and model identifiers
//   - [Error]: categorized provider errors used for retry decisions
//
// Use the [github.com/spetersoncode/nollama/client] package as the entry point
// for provider access.
//
// # Streaming
//
// Streaming calls return a channel of [StreamEvent]. The channel is finite and
// is closed by the provider once the stream ends or fails:
//
//	stream, err := c.ChatStream(ctx, model, messages)
//	if err != nil {
//	    return err
//	}
//	for event := range stream {
//	    if event.Err != nil {
//	        return event.Err
//	    }
//	    fmt.Print(event.Delta)
//	}
//
// # Options
//
// Requests are customised with functional options:
//
//	resp, err := c.Chat(ctx, model, messages,
//	    nollama.WithMaxTokens(1000),
//	    nollama.WithTemperature(0.7),
//	)
package nollama
