// Package gemini adapts the Google Generative AI endpoint to the
// model.Provider contract.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
	"github.com/stonexlabs/portfolio-agent/pkg/model"
	"github.com/stonexlabs/portfolio-agent/pkg/tool"
)

// Provider implements model.Provider using the Google Generative AI SDK.
type Provider struct {
	client    *genai.Client
	modelName string
}

var _ model.Provider = (*Provider)(nil)

// New creates a Gemini provider bound to one model.
func New(ctx context.Context, apiKey, modelName string) (*Provider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Provider{client: client, modelName: modelName}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "gemini" }

// Close releases the underlying client.
func (p *Provider) Close() error { return p.client.Close() }

// List returns available Gemini models that support content generation.
func (p *Provider) List(ctx context.Context) ([]domain.Model, error) {
	var out []domain.Model
	it := p.client.ListModels(ctx)
	for {
		mi, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrUnavailable, err)
		}

		supported := false
		for _, m := range mi.SupportedGenerationMethods {
			if m == "generateContent" {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}
		out = append(out, domain.Model{
			ID:        mi.Name,
			Name:      mi.DisplayName,
			Provider:  "gemini",
			MaxTokens: int(mi.InputTokenLimit),
		})
	}
	return out, nil
}

// Reason sends the transcript and tool declarations to Gemini and parses
// the response into text and/or tool calls.
func (p *Provider) Reason(ctx context.Context, instructions string, transcript []domain.Message, tools []tool.Descriptor) (model.Reasoning, error) {
	slog.Debug("gemini.Reason", "model", p.modelName, "messages", len(transcript), "tools", len(tools))

	gm := p.client.GenerativeModel(p.modelName)
	if instructions != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instructions)}}
	}
	if len(tools) > 0 {
		gm.Tools = []*genai.Tool{{FunctionDeclarations: declarations(tools)}}
	}

	contents, err := toContents(transcript)
	if err != nil {
		return model.Reasoning{}, err
	}
	if len(contents) == 0 {
		return model.Reasoning{}, fmt.Errorf("%w: empty transcript", model.ErrMalformedOutput)
	}

	cs := gm.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return model.Reasoning{}, fmt.Errorf("%w: %v", model.ErrUnavailable, err)
	}
	return parseResponse(resp)
}

// toContents converts transcript messages to genai content. The SDK carries
// function names, not call IDs, on responses; the ID→name mapping is
// rebuilt from earlier assistant messages.
func toContents(transcript []domain.Message) ([]*genai.Content, error) {
	callNames := make(map[string]string)
	var contents []*genai.Content

	for _, msg := range transcript {
		switch msg.Role {
		case domain.RoleSystem:
			// Handled via SystemInstruction.
			continue

		case domain.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})

		case domain.RoleAssistant:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				callNames[tc.ID] = tc.Name
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: tc.Input})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case domain.RoleTool:
			name, ok := callNames[msg.ToolCallID]
			if !ok {
				return nil, fmt.Errorf("%w: tool result %s has no matching call", model.ErrMalformedOutput, msg.ToolCallID)
			}
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     name,
					Response: map[string]any{"result": msg.Content},
				}},
			})
		}
	}
	return contents, nil
}

func parseResponse(resp *genai.GenerateContentResponse) (model.Reasoning, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Reasoning{}, fmt.Errorf("%w: no candidates", model.ErrMalformedOutput)
	}

	var text strings.Builder
	var calls []domain.ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			calls = append(calls, domain.ToolCall{
				ID:    "call-" + uuid.New().String(),
				Name:  p.Name,
				Input: p.Args,
			})
		}
	}

	if text.Len() == 0 && len(calls) == 0 {
		return model.Reasoning{}, fmt.Errorf("%w: candidate has no usable parts", model.ErrMalformedOutput)
	}
	return model.Reasoning{Text: text.String(), ToolCalls: calls}, nil
}

// declarations converts registry descriptors to genai declarations.
func declarations(tools []tool.Descriptor) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toSchema(t.Schema),
		})
	}
	return decls
}

func toSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        schemaType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
