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
	"fmt"

	"github.com/go-arcade/gatekeeper/pkg/trace"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TraceIdHeader = "X-Trace-Id"

// TraceMiddleware opens a server span per request, continuing an upstream
// traceparent when present. Handlers reach the span through c.UserContext().
func TraceMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), headerCarrier{c})
		ctx, span := trace.StartServer(ctx, c.Method()+" "+c.Path(),
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", string(c.Request().URI().RequestURI())),
		)
		defer span.End()

		if requestId, ok := c.Locals("request_id").(string); ok && requestId != "" {
			span.SetAttributes(attribute.String("http.request.id", requestId))
		}
		if traceId := trace.TraceId(ctx); traceId != "" {
			c.Set(TraceIdHeader, traceId)
		}
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			// render here so the span records the final status
			span.RecordError(err)
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		if route := c.Route(); route != nil && route.Path != "" {
			span.SetName(c.Method() + " " + route.Path)
		}
		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusBadRequest {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		return nil
	}
}

// headerCarrier reads propagation headers from the request and writes them
// to the response
type headerCarrier struct {
	c *fiber.Ctx
}

func (h headerCarrier) Get(key string) string {
	return h.c.Get(key)
}

func (h headerCarrier) Set(key, value string) {
	h.c.Set(key, value)
}

func (h headerCarrier) Keys() []string {
	return nil
}
