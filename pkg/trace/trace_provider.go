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

package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Conf selects the OTLP exporter. With Enabled false spans are still created
// so trace ids reach the logs, but nothing leaves the process.
type Conf struct {
	Enabled       bool              `mapstructure:"enabled"`
	Protocol      string            `mapstructure:"protocol"` // grpc or http
	Endpoint      string            `mapstructure:"endpoint"` // host:port
	Insecure      bool              `mapstructure:"insecure"`
	Headers       map[string]string `mapstructure:"headers"`
	ServiceName   string            `mapstructure:"serviceName"`
	BatchTimeout  int               `mapstructure:"batchTimeout"`  // seconds
	ExportTimeout int               `mapstructure:"exportTimeout"` // seconds
}

func (c *Conf) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "gatekeeper"
	}
	if c.Protocol == "" {
		c.Protocol = "http"
	}
	if c.Endpoint == "" {
		if c.Protocol == "grpc" {
			c.Endpoint = "localhost:4317"
		} else {
			c.Endpoint = "localhost:4318"
		}
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 5
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = 30
	}
}

// InitTracerProvider installs the global tracer provider and W3C propagator.
// The returned cleanup flushes pending spans.
func InitTracerProvider(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, func(), error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !conf.Enabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
		otel.SetTracerProvider(tp)
		return tp, func() { _ = tp.Shutdown(context.Background()) }, nil
	}

	conf.setDefaults()
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", conf.ServiceName),
		attribute.String("service.version", version.GetVersion().Version),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	exporter, err := newExporter(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(time.Duration(conf.BatchTimeout)*time.Second),
			sdktrace.WithExportTimeout(time.Duration(conf.ExportTimeout)*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	log.Infow("tracing enabled", "protocol", conf.Protocol, "endpoint", conf.Endpoint, "service", conf.ServiceName)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(conf.ExportTimeout)*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warnw("failed to flush spans", "error", err)
		}
	}
	return tp, cleanup, nil
}

func newExporter(ctx context.Context, conf Conf) (sdktrace.SpanExporter, error) {
	timeout := time.Duration(conf.ExportTimeout) * time.Second
	switch conf.Protocol {
	case "grpc":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(conf.Endpoint),
			otlptracegrpc.WithTimeout(timeout),
		}
		if conf.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(conf.Endpoint),
			otlptracehttp.WithTimeout(timeout),
		}
		if conf.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported trace protocol: %q", conf.Protocol)
	}
}
