package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/meetbook/internal/instrumentation"
	"github.com/teemow/meetbook/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

type invocationKey struct{}

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		start := time.Now()
		session := sc.Session(ctx)
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithSession(session.ID()).
			WithUser(session.Name())
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.Complete(false, err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			span.SetAttributes(attribute.Bool("mcp.tool.error_result", true))
		default:
			invocation.Complete(true, nil)
			instrumentation.SetSpanSuccess(span)
		}
		if invocation.Outcome != "" {
			span.SetAttributes(attribute.String(instrumentation.SpanAttrStatus, invocation.Outcome))
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

// RecordOutcome attaches a booking outcome to the audit record of the tool
// call in ctx. It is a no-op outside InstrumentedToolHandler.
func RecordOutcome(ctx context.Context, outcome, reason string) {
	if inv, ok := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation); ok {
		inv.WithOutcome(outcome, reason)
	}
}
