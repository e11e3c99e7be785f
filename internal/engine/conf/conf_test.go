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

package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[http]
port = 9090

[http.auth]
secretKey = "file-secret"
defaultPassword = "changeme"
accessExpire = 60

[database.mysql]
host = "127.0.0.1"
user = "root"
dbname = "gatekeeper"

[sso]
type = "oauth"
name = "okta"
baseUrl = "https://example.okta.com/oauth2/default/v1"
`

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	c, err := LoadConfigFile(writeConf(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Http.Port)
	assert.Equal(t, "/api/v1", c.Http.ContextPath)
	assert.Equal(t, "file-secret", c.Http.Auth.SecretKey)
	assert.Equal(t, 60, c.Http.Auth.AccessExpire)
	assert.Equal(t, "okta", c.SSO.Name)
	assert.Equal(t, 60, c.Captcha.Cooldown)
	assert.Zero(t, c.Captcha.TTL)
	assert.False(t, c.Trace.Enabled)
	assert.Equal(t, "http", c.Trace.Protocol)
	assert.False(t, c.Http.Debug)
}

func TestLoadConfigFileEnvOverride(t *testing.T) {
	t.Setenv("GATEKEEPER_HTTP_DEBUG", "true")
	t.Setenv("GATEKEEPER_HTTP_AUTH_SECRETKEY", "env-secret")

	c, err := LoadConfigFile(writeConf(t, sample))
	require.NoError(t, err)
	assert.True(t, c.Http.Debug)
	assert.Equal(t, "env-secret", c.Http.Auth.SecretKey)
}

func TestLoadConfigFileRequiresSecret(t *testing.T) {
	_, err := LoadConfigFile(writeConf(t, "[http]\nport = 1\n"))
	assert.ErrorContains(t, err, "secretKey")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadConfigFileRejectsNegativeCaptchaTTL(t *testing.T) {
	_, err := LoadConfigFile(writeConf(t, sample+"\n[captcha]\nttl = -1\n"))
	assert.ErrorContains(t, err, "captcha.ttl")
}
