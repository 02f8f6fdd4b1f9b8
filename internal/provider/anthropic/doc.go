// Package anthropic implements nollama.ChatProvider over the Anthropic
// Messages API using the official Go SDK.
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"))
//	stream, err := client.ChatStream(ctx, history, nollama.WithModel("claude-haiku-4-5"))
//
// System turns and the WithSystem option are sent as system blocks. The
// Messages API requires a token limit, so 4096 is used when none is set.
package anthropic
