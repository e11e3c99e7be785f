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

package oidc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-arcade/gatekeeper/pkg/sso/util"
	"golang.org/x/oauth2"
)

// OIDCProvider resolves its endpoints through issuer discovery
type OIDCProvider struct {
	Provider   *oidc.Provider
	Config     *oauth2.Config
	httpClient *http.Client
}

func NewOIDCProvider(ctx context.Context, issuer, clientID, clientSecret string, scopes []string, timeout time.Duration) (*OIDCProvider, error) {
	httpClient := &http.Client{Timeout: timeout}
	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, httpClient), issuer)
	if err != nil {
		return nil, err
	}

	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &OIDCProvider{
		Provider: provider,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       append([]string{oidc.ScopeOpenID, "email", "profile"}, scopes...),
			Endpoint:     endpoint,
		},
		httpClient: httpClient,
	}, nil
}

func (p *OIDCProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	return util.ExchangeCode(ctx, p.Config, p.httpClient, code, redirectURI)
}

func (p *OIDCProvider) FetchProfile(ctx context.Context, accessToken string) (*util.Profile, error) {
	ctx = oidc.ClientContext(ctx, p.httpClient)
	info, err := p.Provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		// go-oidc does not expose the status code; a reached provider that refused
		// and a transport failure are told apart by the error type only.
		return nil, &util.UpstreamError{Op: "userinfo", Rejected: !isTransport(err), Err: err}
	}
	var claims map[string]any
	if err := info.Claims(&claims); err != nil {
		return nil, &util.UpstreamError{Op: "userinfo", Rejected: true, Err: err}
	}
	profile, err := util.ProfileFromClaims(claims)
	if err != nil {
		return nil, &util.UpstreamError{Op: "userinfo", Rejected: true, Err: err}
	}
	return profile, nil
}

func isTransport(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}
