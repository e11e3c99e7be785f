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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gatekeeper"

// Metrics owns a private registry with the process collectors and the
// authentication counters. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	logins       *prometheus.CounterVec
	captchas     *prometheus.CounterVec
	accessDenied *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_total",
			Help:      "Login attempts by method and result.",
		}, []string{"method", "result"}),
		captchas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captcha_total",
			Help:      "Verification code operations by purpose, operation and result.",
		}, []string{"purpose", "op", "result"}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Authorization checks that denied the caller, by required role.",
		}, []string{"scope", "role"}),
	}
	registry.MustRegister(m.logins, m.captchas, m.accessDenied)
	return m
}

func (m *Metrics) ObserveLogin(method string, err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(method, result(err)).Inc()
}

func (m *Metrics) ObserveCaptcha(purpose, op string, err error) {
	if m == nil {
		return
	}
	m.captchas.WithLabelValues(purpose, op, result(err)).Inc()
}

func (m *Metrics) ObserveAccessDenied(scope, role string) {
	if m == nil {
		return
	}
	m.accessDenied.WithLabelValues(scope, role).Inc()
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
