// Package openai adapts the OpenAI chat-completions endpoint to the
// model.Provider contract, using the API's native tool calling.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
	"github.com/stonexlabs/portfolio-agent/pkg/model"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

// Provider implements model.Provider using the go-openai client.
type Provider struct {
	client    *openai.Client
	modelName string
}

var _ model.Provider = (*Provider)(nil)

// New creates an OpenAI provider bound to one model.
func New(apiKey, modelName string) *Provider {
	return &Provider{client: openai.NewClient(apiKey), modelName: modelName}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "openai" }

// List returns models visible to the API key.
func (p *Provider) List(ctx context.Context) ([]domain.Model, error) {
	resp, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	out := make([]domain.Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, domain.Model{ID: m.ID, Name: m.ID, Provider: "openai"})
	}
	return out, nil
}

// Reason sends the transcript and tool definitions to the chat-completions
// endpoint and parses the response into text and/or tool calls.
func (p *Provider) Reason(ctx context.Context, instructions string, transcript []domain.Message, tools []tool.Descriptor) (model.Reasoning, error) {
	slog.Debug("openai.Reason", "model", p.modelName, "messages", len(transcript), "tools", len(tools))

	req := openai.ChatCompletionRequest{
		Model:    p.modelName,
		Messages: toMessages(instructions, transcript),
		Tools:    definitions(tools),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return model.Reasoning{}, fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return model.Reasoning{}, fmt.Errorf("%w: no choices", model.ErrMalformedOutput)
	}
	return parseMessage(resp.Choices[0].Message)
}

// toMessages converts the transcript, prepending the system prompt. The
// prompt is virtual: it is sent on every call but never appended to the
// caller-visible transcript.
func toMessages(instructions string, transcript []domain.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(transcript)+1)
	if instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}

	for _, m := range transcript {
		switch m.Role {
		case domain.RoleSystem:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: m.Content,
			})
		case domain.RoleUser:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Content,
			})
		case domain.RoleAssistant:
			om := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
			for _, tc := range m.ToolCalls {
				args, _ := json.Marshal(tc.Input)
				om.ToolCalls = append(om.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			msgs = append(msgs, om)
		case domain.RoleTool:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return msgs
}

func parseMessage(msg openai.ChatCompletionMessage) (model.Reasoning, error) {
	out := model.Reasoning{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return model.Reasoning{}, fmt.Errorf("%w: tool call arguments: %v", model.ErrMalformedOutput, err)
			}
		}
		id := tc.ID
		if id == "" {
			id = "call-" + uuid.New().String()
		}
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:    id,
			Name:  tc.Function.Name,
			Input: args,
		})
	}
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return model.Reasoning{}, fmt.Errorf("%w: empty assistant message", model.ErrMalformedOutput)
	}
	return out, nil
}

func definitions(tools []tool.Descriptor) []openai.Tool {
	defs := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Schema,
			},
		})
	}
	return defs
}
