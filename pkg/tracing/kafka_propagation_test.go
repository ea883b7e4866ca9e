package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/pkg/logging"
)

func TestKafkaHeaderRoundTrip(t *testing.T) {
	tp, err := Init(context.Background(), "test", "", logging.Discard())
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "produce")
	defer span.End()

	headers := InjectKafkaHeaders(ctx, []kafka.Header{{Key: "source", Value: []byte("storefront")}})
	assert.NotEmpty(t, Traceparent(ctx))

	got := trace.SpanContextFromContext(ExtractKafkaHeaders(context.Background(), headers))
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.Equal(t, span.SpanContext().SpanID(), got.SpanID())
}

func TestTraceparentWithoutSpan(t *testing.T) {
	assert.Empty(t, Traceparent(context.Background()))
}

func TestContextFromTraceparent(t *testing.T) {
	tp, err := Init(context.Background(), "test", "", logging.Discard())
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "checkout")
	stored := Traceparent(ctx)
	span.End()

	resumed := trace.SpanContextFromContext(ContextFromTraceparent(context.Background(), stored))
	assert.True(t, resumed.IsRemote())
	assert.Equal(t, span.SpanContext().TraceID(), resumed.TraceID())

	assert.Equal(t, context.Background(), ContextFromTraceparent(context.Background(), ""))
}

func TestHeaderCarrierSetReplaces(t *testing.T) {
	headers := []kafka.Header{{Key: TraceparentHeader, Value: []byte("old")}}
	c := HeaderCarrier{Headers: &headers}
	c.Set(TraceparentHeader, "new")
	c.Set("baggage", "k=v")

	assert.Len(t, headers, 2)
	assert.Equal(t, "new", c.Get(TraceparentHeader))
	assert.ElementsMatch(t, []string{TraceparentHeader, "baggage"}, c.Keys())
}
