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
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/go-arcade/gatekeeper/internal/pkg/notify"
	"github.com/go-arcade/gatekeeper/pkg/cache"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/sso"
	"github.com/go-arcade/gatekeeper/pkg/trace"
	"github.com/spf13/viper"
)

const envPrefix = "GATEKEEPER"

type AppConfig struct {
	Log      log.Conf           `mapstructure:"log"`
	Http     http.Http          `mapstructure:"http"`
	Database database.Database  `mapstructure:"database"`
	Redis    cache.Redis        `mapstructure:"redis"`
	SSO      sso.ProviderConfig `mapstructure:"sso"`
	Notify   notify.Conf        `mapstructure:"notify"`
	Captcha  CaptchaConf        `mapstructure:"captcha"`
	Catalog  catalog.Conf       `mapstructure:"catalog"`
	Trace    trace.Conf         `mapstructure:"trace"`
}

// CaptchaConf tunes verification codes; durations are seconds
type CaptchaConf struct {
	Cooldown int    `mapstructure:"cooldown"`
	TTL      int    `mapstructure:"ttl"` // 0 keeps a code valid until superseded
	Product  string `mapstructure:"product"` // shown in mail subjects
}

var (
	cfg     AppConfig
	loadErr error
	once    sync.Once
)

// NewConf loads the configuration once per process. The result is immutable
// afterwards: no file watching, no reload.
func NewConf(confFile string) (AppConfig, error) {
	once.Do(func() {
		cfg, loadErr = LoadConfigFile(confFile)
	})
	return cfg, loadErr
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.path", "./logs")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.contextPath", "/api/v1")
	v.SetDefault("http.accessLog", true)
	v.SetDefault("http.exposeMetrics", true)
	v.SetDefault("http.debug", false)
	v.SetDefault("http.bodyLimit", 4)
	v.SetDefault("http.readTimeout", 30)
	v.SetDefault("http.writeTimeout", 30)
	v.SetDefault("http.idleTimeout", 60)
	v.SetDefault("http.shutdownTimeout", 10)
	v.SetDefault("http.allowOrigins", "*")
	v.SetDefault("http.auth.secretKey", "")
	v.SetDefault("http.auth.accessExpire", 1440)
	v.SetDefault("http.auth.issuer", "gatekeeper")
	v.SetDefault("http.auth.defaultPassword", "")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("redis.mode", "single")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.dialTimeout", 5)
	v.SetDefault("redis.readTimeout", 3)
	v.SetDefault("redis.writeTimeout", 3)
	v.SetDefault("sso.type", "")
	v.SetDefault("sso.clientSecret", "")
	v.SetDefault("sso.timeout", 10)
	v.SetDefault("notify.type", "smtp")
	v.SetDefault("notify.timeout", 10)
	v.SetDefault("notify.smtp.password", "")
	v.SetDefault("captcha.cooldown", 60)
	v.SetDefault("captcha.ttl", 0)
	v.SetDefault("captcha.product", "gatekeeper")
	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.retries", 2)
	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.protocol", "http")
	v.SetDefault("trace.endpoint", "")
}

// LoadConfigFile reads a toml file and overlays GATEKEEPER_* environment
// variables, e.g. GATEKEEPER_HTTP_AUTH_SECRETKEY or GATEKEEPER_HTTP_DEBUG.
// An empty confFile looks for ./conf.d/config.toml and tolerates its absence.
func LoadConfigFile(confFile string) (AppConfig, error) {
	var c AppConfig

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if confFile != "" {
		v.SetConfigFile(confFile)
	} else {
		v.AddConfigPath("./conf.d")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if confFile != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects configurations the service must not start with
func (c *AppConfig) Validate() error {
	if c.Http.Auth.SecretKey == "" {
		return fmt.Errorf("http.auth.secretKey is required")
	}
	if c.Http.Auth.DefaultPassword == "" {
		return fmt.Errorf("http.auth.defaultPassword is required")
	}
	if c.Captcha.Cooldown < 0 || c.Captcha.TTL < 0 {
		return fmt.Errorf("captcha.cooldown and captcha.ttl must be >= 0")
	}
	return c.Log.Validate()
}
