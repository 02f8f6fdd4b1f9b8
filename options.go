package nollama

// Options are the per-request settings a provider applies to a chat call.
// Zero values leave the provider's own default in place.
type Options struct {
	Model     string
	MaxTokens int

	// Temperature is nil unless set; 0 is a valid temperature.
	Temperature *float64

	// System is sent ahead of the conversation as the system prompt.
	System string
}

// Option adjusts Options.
type Option func(*Options)

// WithModel names the provider-side model id.
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithMaxTokens caps the length of the reply.
func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = &t }
}

// WithSystem sets the system prompt.
func WithSystem(prompt string) Option {
	return func(o *Options) { o.System = prompt }
}

// ApplyOptions folds opts in order; later options win.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
