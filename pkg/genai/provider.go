package genai

import "context"

// Message is a chat turn in a provider-agnostic format.
type Message struct {
	Role    string // "user", "model", "system"
	Content string
}

// Blob is a binary artifact attached to a generation request.
type Blob struct {
	MIMEType string
	Data     []byte
}

const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

type Option func(*Options)

type Options struct {
	Temperature float64
	Model       string // override the provider's default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider is the AI collaborator contract. Constructed once at process
// start with its API key; callers bound every request with a context
// deadline. The collaborator only ever receives copies of stored artifacts
// and returns text; it owns no data.
type Provider interface {
	// Generate sends a single prompt, optionally with one binary artifact
	// (medical image or audio recording) inlined.
	Generate(ctx context.Context, prompt string, media *Blob, options ...Option) (string, error)

	// Chat sends a multi-turn history and returns the model's reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ModelName identifies the model for persistence alongside results.
	ModelName() string
}
