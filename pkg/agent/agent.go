// Package agent implements the tool-calling loop: a reasoning phase asks
// the model for its next step, an acting phase executes the requested tool
// calls, and the cycle repeats until the model answers without requesting
// tools. Each run owns a private append-only transcript seeded from the
// caller's messages; nothing persists across runs.
package agent

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
	"github.com/stonexlabs/portfolio-agent/pkg/model"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

var tracer = otel.Tracer("github.com/stonexlabs/portfolio-agent/pkg/agent")

// DefaultMaxCycles bounds the reasoning/acting loop. A model that keeps
// requesting tools would otherwise never terminate.
const DefaultMaxCycles = 25

// DefaultSystemPrompt is the portfolio-analyst persona sent with every
// reasoning call.
const DefaultSystemPrompt = `You are an expert portfolio analyst at StoneX Wealth Management. Your role is to help financial advisors and clients understand their portfolios through data-driven insights.

**Your capabilities:**
- Analyze portfolio holdings and calculate risk metrics
- Retrieve real-time market data and earnings intelligence
- Provide actionable recommendations based on fundamentals
- Explain complex financial concepts clearly

**Guidelines:**
- Always use tools to retrieve actual data - never make up numbers or holdings
- For portfolio questions, start by getting holdings data, then enrich with market data
- For risk analysis, use the calculate_portfolio_risk function
- For earnings insights, search the earnings reports
- Be precise with numbers (show decimals for percentages)
- Provide context: compare to benchmarks when relevant
- If data is missing, clearly state what's unavailable

**Tone:** Professional, insightful, and concise. Focus on actionable intelligence.`

// Config holds the per-agent settings. The hosting process constructs it
// once and passes it in; the agent holds no ambient global state.
type Config struct {
	// SystemPrompt is prepended to every model call. It is never written
	// into the caller-visible transcript.
	SystemPrompt string

	// MaxCycles bounds the number of reasoning phases per run. When the
	// bound is hit the run finishes with a synthesized assistant message
	// instead of erroring.
	MaxCycles int

	// ToolTimeout, when non-zero, bounds each individual tool invocation.
	// Zero means no per-tool timeout.
	ToolTimeout time.Duration
}

// Agent drives the reasoning/acting loop over one provider and one tool
// registry. Both are read-only from the agent's perspective, so a single
// Agent may serve concurrent runs.
type Agent struct {
	provider model.Provider
	registry *tool.Registry
	cfg      Config
}

// New creates an Agent. Zero-value config fields fall back to defaults.
func New(provider model.Provider, registry *tool.Registry, cfg Config) *Agent {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxCycles <= 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	return &Agent{provider: provider, registry: registry, cfg: cfg}
}

// Chunk is the transcript delta produced by one completed phase: a single
// assistant message after a reasoning phase, or one tool result per
// requested call after an acting phase.
type Chunk struct {
	Messages []domain.Message `json:"messages"`
}

// state of the run loop.
type state int

const (
	stateReasoning state = iota
	stateActing
	stateDone
)

// Predict runs the loop to completion and returns every message appended
// since the run started, in append order. It is implemented by draining
// PredictStream so the two contracts cannot diverge.
func (a *Agent) Predict(ctx context.Context, seed []domain.Message) ([]domain.Message, error) {
	var out []domain.Message
	for chunk, err := range a.PredictStream(ctx, seed) {
		if err != nil {
			return nil, err
		}
		out = append(out, chunk.Messages...)
	}
	return out, nil
}

// PredictStream starts a fresh run and returns a finite sequence of
// transcript deltas, one per completed phase. The caller may stop ranging
// at any point; the run is abandoned at its next suspension point and no
// state leaks into later runs. A model-adapter failure ends the sequence
// with a non-nil error; tool failures do not, they surface as error-flagged
// tool results inside a chunk.
func (a *Agent) PredictStream(ctx context.Context, seed []domain.Message) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		transcript := make([]domain.Message, len(seed))
		copy(transcript, seed)

		var pending []domain.ToolCall
		st := stateReasoning
		cycle := 0

		for st != stateDone {
			if err := ctx.Err(); err != nil {
				yield(Chunk{}, fmt.Errorf("run aborted: %w", err))
				return
			}

			switch st {
			case stateReasoning:
				cycle++
				if cycle > a.cfg.MaxCycles {
					msg := domain.Message{
						Role:    domain.RoleAssistant,
						Content: fmt.Sprintf("I was unable to finish within %d tool-use rounds. Here is what I have so far; please narrow the question and try again.", a.cfg.MaxCycles),
					}
					transcript = append(transcript, msg)
					slog.Warn("agent run hit cycle limit", "maxCycles", a.cfg.MaxCycles)
					st = stateDone
					yield(Chunk{Messages: []domain.Message{msg}}, nil)
					return
				}

				res, err := a.reason(ctx, transcript)
				if err != nil {
					yield(Chunk{}, err)
					return
				}

				msg := domain.Message{
					Role:      domain.RoleAssistant,
					Content:   res.Text,
					ToolCalls: res.ToolCalls,
				}
				transcript = append(transcript, msg)

				if len(res.ToolCalls) == 0 {
					st = stateDone
				} else {
					pending = res.ToolCalls
					st = stateActing
				}
				if !yield(Chunk{Messages: []domain.Message{msg}}, nil) {
					return
				}

			case stateActing:
				results := a.executeBatch(ctx, pending)
				transcript = append(transcript, results...)
				pending = nil
				st = stateReasoning
				if !yield(Chunk{Messages: results}, nil) {
					return
				}
			}
		}
	}
}

// reason performs one reasoning phase under a trace span.
func (a *Agent) reason(ctx context.Context, transcript []domain.Message) (model.Reasoning, error) {
	ctx, span := tracer.Start(ctx, "agent.reason", trace.WithAttributes(
		attribute.String("model.provider", a.provider.Name()),
		attribute.Int("transcript.messages", len(transcript)),
	))
	defer span.End()

	res, err := a.provider.Reason(ctx, a.cfg.SystemPrompt, transcript, a.registry.Describe())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.Reasoning{}, fmt.Errorf("reasoning phase: %w", err)
	}
	span.SetAttributes(attribute.Int("tool_calls.requested", len(res.ToolCalls)))
	return res, nil
}
