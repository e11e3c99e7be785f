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
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := NewMetrics()
	m.ObserveLogin("password", nil)
	m.ObserveLogin("password", errors.New("bad password"))
	m.ObserveLogin("sso", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("password", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("sso", "success")))

	m.ObserveCaptcha("REGISTER", "issue", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.captchas.WithLabelValues("REGISTER", "issue", "success")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveLogin("password", nil)
	m.ObserveCaptcha("REGISTER", "verify", nil)
	m.ObserveAccessDenied("org", "ADMIN")
}
