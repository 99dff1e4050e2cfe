package otel

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	eventbus "github.com/hanpama/sdlcompose/internal/eventbus"
	events "github.com/hanpama/sdlcompose/internal/events"
	reqid "github.com/hanpama/sdlcompose/internal/reqid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup("", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSubscriberSpans(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	unsubscribe := newSubscriber(tp.Tracer("test")).register()
	defer unsubscribe()

	ctx, _ := reqid.NewContext(context.Background())
	req := httptest.NewRequest("POST", "/compose", nil)
	eventbus.Publish(ctx, events.HTTPStart{Request: req})
	eventbus.Publish(ctx, events.ComposeStart{Source: "a.graphql", Fragments: 2, Resolvers: 1})
	eventbus.Publish(ctx, events.ComposeFinish{Source: "a.graphql", Bindings: 1})
	eventbus.Publish(ctx, events.ComposeStart{Source: "b.graphql", Fragments: 2, Resolvers: 1})
	eventbus.Publish(ctx, events.ComposeFinish{Source: "b.graphql", Err: errors.New("unresolved type")})
	eventbus.Publish(ctx, events.ValidateFinish{Types: 3, Start: time.Now(), Duration: time.Millisecond})
	eventbus.Publish(ctx, events.HTTPFinish{Request: req, Status: 200})

	spans := rec.Ended()
	var names []string
	for _, s := range spans {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"sdl.compose", "sdl.compose", "sdl.validate", "http.request"}, names)

	httpSpan := spans[3]
	for _, s := range spans[:3] {
		require.Equal(t, httpSpan.SpanContext().SpanID(), s.Parent().SpanID())
	}
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
}
