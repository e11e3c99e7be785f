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

package http

// Http is the inbound server configuration
type Http struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ContextPath     string `mapstructure:"contextPath"`
	AccessLog       bool   `mapstructure:"accessLog"`
	ExposeMetrics   bool   `mapstructure:"exposeMetrics"`
	Debug           bool   `mapstructure:"debug"` // adds error tracebacks to failure responses
	BodyLimit       int    `mapstructure:"bodyLimit"` // MB
	ReadTimeout     int    `mapstructure:"readTimeout"`
	WriteTimeout    int    `mapstructure:"writeTimeout"`
	IdleTimeout     int    `mapstructure:"idleTimeout"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
	AllowOrigins    string `mapstructure:"allowOrigins"` // comma separated, * for any
	TLS             TLS    `mapstructure:"tls"`
	Auth            Auth   `mapstructure:"auth"`
}

type TLS struct {
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// Auth configures session tokens
type Auth struct {
	SecretKey    string `mapstructure:"secretKey"`
	AccessExpire int    `mapstructure:"accessExpire"` // minutes
	Issuer       string `mapstructure:"issuer"`
	// DefaultPassword is assigned to the founding user of a new organization
	DefaultPassword string `mapstructure:"defaultPassword"`
}
