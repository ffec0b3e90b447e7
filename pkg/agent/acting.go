package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
)

// executeBatch runs one acting phase. Calls within a batch are independent
// by contract, so they execute concurrently; each slot lands at the index
// of its request so the returned slice is deterministic regardless of
// completion order, and every result carries its originating call ID.
//
// A failing call never aborts its siblings: the failure is absorbed into an
// error-flagged tool result for the next reasoning phase to see.
func (a *Agent) executeBatch(ctx context.Context, calls []domain.ToolCall) []domain.Message {
	results := make([]domain.Message, len(calls))

	g := new(errgroup.Group)
	for i, tc := range calls {
		g.Go(func() error {
			results[i] = a.invoke(ctx, tc)
			return nil
		})
	}
	g.Wait()

	return results
}

// invoke runs a single tool call under a trace span, converting any failure
// into an error result message.
func (a *Agent) invoke(ctx context.Context, tc domain.ToolCall) domain.Message {
	ctx, span := tracer.Start(ctx, "agent.tool", trace.WithAttributes(
		attribute.String("tool.name", tc.Name),
		attribute.String("tool.call_id", tc.ID),
	))
	defer span.End()

	if a.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.ToolTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := a.registry.Invoke(ctx, tc.Name, tc.Input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("tool invocation failed", "tool", tc.Name, "callID", tc.ID, "error", err)
		return domain.NewToolResult(tc.ID, fmt.Sprintf("Error: %v", err), true)
	}

	slog.Debug("tool invocation completed", "tool", tc.Name, "callID", tc.ID, "duration", time.Since(start))
	return domain.NewToolResult(tc.ID, result, false)
}
