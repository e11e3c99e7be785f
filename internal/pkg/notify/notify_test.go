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

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-arcade/gatekeeper/internal/pkg/notify/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestWebhookNotifier(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n, err := NewNotifier(Conf{Type: "webhook", Webhook: WebhookConf{URL: srv.URL, Token: "tkn"}})
	require.NoError(t, err)
	require.NoError(t, n.Send(context.Background(), "alice@example.com", "subject", "body"))
	assert.Equal(t, "alice@example.com", got["receiver"])
	assert.Equal(t, "body", got["body"])
}

func TestWebhookNotifierFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n, err := NewNotifier(Conf{Type: "webhook", Webhook: WebhookConf{URL: srv.URL}})
	require.NoError(t, err)
	assert.Error(t, n.Send(context.Background(), "alice@example.com", "s", "b"))
}

func TestNotifierSendIsTraced(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n, err := NewNotifier(Conf{Type: "webhook", Webhook: WebhookConf{URL: srv.URL}})
	require.NoError(t, err)
	require.Error(t, n.Send(context.Background(), "alice@example.com", "s", "b"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "notify.Send", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestNewNotifierValidation(t *testing.T) {
	_, err := NewNotifier(Conf{Type: "pigeon"})
	assert.Error(t, err)
	_, err = NewNotifier(Conf{Type: "smtp"})
	assert.Error(t, err)
	_, err = NewNotifier(Conf{Type: "webhook"})
	assert.Error(t, err)
}

func TestCaptchaTemplates(t *testing.T) {
	e := template.NewCaptchaEngine()
	msg, err := e.Render(template.CaptchaRegister, map[string]any{"Code": "AB12", "ValidMinutes": 5, "Product": "gatekeeper"})
	require.NoError(t, err)
	assert.Equal(t, "[GATEKEEPER] Verify your email address", msg.Subject)
	assert.Contains(t, msg.Body, "AB12")
	assert.Contains(t, msg.Body, "valid for 5 minutes")

	msg, err = e.Render(template.CaptchaResetPassword, map[string]any{"Code": "CD34", "ValidMinutes": 0, "Product": "gatekeeper"})
	require.NoError(t, err)
	assert.NotContains(t, msg.Body, "valid for")

	_, err = e.Render("UNKNOWN", nil)
	assert.Error(t, err)
}
