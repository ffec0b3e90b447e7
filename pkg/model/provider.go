// Package model defines the contract between the agent loop and an LLM
// endpoint. Adapters are stateless per call: they receive the full
// transcript plus instructions and return either a final answer or a batch
// of tool calls.
package model

import (
	"context"
	"errors"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

var (
	// ErrUnavailable indicates the underlying endpoint could not be
	// reached. The core never retries; retry policy belongs to the
	// endpoint client.
	ErrUnavailable = errors.New("model endpoint unavailable")

	// ErrMalformedOutput indicates the endpoint answered but its response
	// could not be parsed into text or tool calls.
	ErrMalformedOutput = errors.New("malformed model output")
)

// Reasoning is the outcome of one reasoning phase. When ToolCalls is empty
// the run is complete and Text is the final answer; otherwise Text is
// optional commentary accompanying the requested calls.
type Reasoning struct {
	Text      string
	ToolCalls []domain.ToolCall
}

// Provider adapts one LLM endpoint (e.g. Gemini, OpenAI).
type Provider interface {
	// Name returns the provider identifier (e.g. "gemini", "openai").
	Name() string

	// List returns the models this provider can serve.
	List(ctx context.Context) ([]domain.Model, error)

	// Reason sends instructions, the transcript, and the available tool
	// descriptors to the model and returns its next step. Tool call IDs
	// in the result are assigned by the adapter and unique within a run.
	Reason(ctx context.Context, instructions string, transcript []domain.Message, tools []tool.Descriptor) (Reasoning, error)
}
