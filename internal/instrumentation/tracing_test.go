package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpans(t *testing.T) {
	ctx := context.Background()

	ctx1, span := StartSpan(ctx, "booking.book", attribute.String(SpanAttrStatus, "confirmed"))
	if ctx1 == nil || span == nil {
		t.Fatal("StartSpan returned nil")
	}
	span.End()

	_, span = StartToolSpan(ctx, "schedule_meeting")
	SetSpanSuccess(span)
	span.End()

	_, span = StartCalendarSpan(ctx, ProviderGoogle, OperationList)
	SetSpanError(span, errors.New("timeout"))
	SetSpanError(span, nil)
	span.End()
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("GetTraceID() = %q, want empty", id)
	}
}
