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

package sso

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/gatekeeper/pkg/sso/oauth"
	"github.com/go-arcade/gatekeeper/pkg/sso/oidc"
	"github.com/go-arcade/gatekeeper/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
)

const defaultTimeout = 10 * time.Second

// ProviderConfig configures the single upstream identity provider
type ProviderConfig struct {
	Name         string   `mapstructure:"name"` // e.g. okta
	Type         string   `mapstructure:"type"` // oauth or oidc
	ClientID     string   `mapstructure:"clientId"`
	ClientSecret string   `mapstructure:"clientSecret"`
	Scopes       []string `mapstructure:"scopes"`
	Timeout      int      `mapstructure:"timeout"` // seconds

	// OAuth: BaseURL serves /token and /userinfo unless overridden
	BaseURL     string `mapstructure:"baseUrl"`
	TokenURL    string `mapstructure:"tokenUrl"`
	UserInfoURL string `mapstructure:"userInfoUrl"`

	// OIDC
	Issuer string `mapstructure:"issuer"`
}

// Enabled reports whether SSO login is configured at all
func (c *ProviderConfig) Enabled() bool {
	return c.Type != ""
}

func (c *ProviderConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return defaultTimeout
}

type namedProvider struct {
	name string
	bridge
}

type bridge interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

func (p *namedProvider) Name() string {
	return p.name
}

func (p *namedProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (token string, err error) {
	ctx, span := trace.StartClient(ctx, "sso.ExchangeCode", attribute.String("sso.provider", p.name))
	defer func() { trace.End(span, err) }()
	return p.bridge.ExchangeCode(ctx, code, redirectURI)
}

func (p *namedProvider) FetchProfile(ctx context.Context, accessToken string) (profile *Profile, err error) {
	ctx, span := trace.StartClient(ctx, "sso.FetchProfile", attribute.String("sso.provider", p.name))
	defer func() { trace.End(span, err) }()
	return p.bridge.FetchProfile(ctx, accessToken)
}

// NewSSOProvider builds the bridge named by conf.Type
func NewSSOProvider(ctx context.Context, conf *ProviderConfig) (IProvider, error) {
	name := conf.Name
	if name == "" {
		name = conf.Type
	}
	switch conf.Type {
	case "oauth":
		base := strings.TrimRight(conf.BaseURL, "/")
		tokenURL, userInfoURL := conf.TokenURL, conf.UserInfoURL
		if tokenURL == "" {
			tokenURL = base + "/token"
		}
		if userInfoURL == "" {
			userInfoURL = base + "/userinfo"
		}
		if base == "" && (conf.TokenURL == "" || conf.UserInfoURL == "") {
			return nil, fmt.Errorf("sso: baseUrl or tokenUrl/userInfoUrl is required for oauth")
		}
		return &namedProvider{
			name:   name,
			bridge: oauth.NewOAuthProvider(conf.ClientID, conf.ClientSecret, tokenURL, userInfoURL, conf.Scopes, conf.timeout()),
		}, nil
	case "oidc":
		provider, err := oidc.NewOIDCProvider(ctx, conf.Issuer, conf.ClientID, conf.ClientSecret, conf.Scopes, conf.timeout())
		if err != nil {
			return nil, fmt.Errorf("sso: oidc discovery: %w", err)
		}
		return &namedProvider{name: name, bridge: provider}, nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", conf.Type)
	}
}
