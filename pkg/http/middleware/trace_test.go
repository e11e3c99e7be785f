// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/go-arcade/gatekeeper/pkg/trace"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	upstreamTraceId = "4bf92f3577b34da6a3ce929b0e0e4736"
	traceparent     = "00-" + upstreamTraceId + "-00f067aa0ba902b7-01"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func intAttr(attrs []attribute.KeyValue, key string) int64 {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.AsInt64()
		}
	}
	return -1
}

func TestTraceMiddleware(t *testing.T) {
	sr := recordSpans(t)

	var handlerTraceId string
	app := fiber.New()
	app.Use(RequestMiddleware(), TraceMiddleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		handlerTraceId = trace.TraceId(c.UserContext())
		return c.SendString("ok")
	})

	req := httptest.NewRequest(fiber.MethodGet, "/items/42", nil)
	req.Header.Set("traceparent", traceparent)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, upstreamTraceId, resp.Header.Get(TraceIdHeader))
	assert.Equal(t, upstreamTraceId, handlerTraceId)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /items/:id", span.Name())
	assert.Equal(t, oteltrace.SpanKindServer, span.SpanKind())
	assert.Equal(t, upstreamTraceId, span.Parent().TraceID().String())
	assert.EqualValues(t, fiber.StatusOK, intAttr(span.Attributes(), "http.status_code"))
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTraceMiddlewareRecordsFailures(t *testing.T) {
	sr := recordSpans(t)

	app := fiber.New()
	app.Use(TraceMiddleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return errors.New("store unavailable")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/items/1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(TraceIdHeader))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.False(t, spans[0].Parent().IsValid())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.EqualValues(t, fiber.StatusInternalServerError, intAttr(spans[0].Attributes(), "http.status_code"))
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}
