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

package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/gatekeeper/pkg/sso/util"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// OAuthProvider talks to a plain OAuth2 authorization server exposing
// {base}/token and {base}/userinfo.
type OAuthProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
	httpClient  *http.Client
	rest        *resty.Client
}

func NewOAuthProvider(clientID, clientSecret, tokenURL, userInfoURL string, scopes []string, timeout time.Duration) *OAuthProvider {
	httpClient := &http.Client{Timeout: timeout}
	rest := resty.NewWithClient(httpClient)
	rest.JSONUnmarshal = sonic.Unmarshal
	return &OAuthProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		UserInfoURL: userInfoURL,
		httpClient:  httpClient,
		rest:        rest,
	}
}

func (p *OAuthProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	return util.ExchangeCode(ctx, p.Config, p.httpClient, code, redirectURI)
}

func (p *OAuthProvider) FetchProfile(ctx context.Context, accessToken string) (*util.Profile, error) {
	var claims map[string]any
	resp, err := p.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json").
		SetResult(&claims).
		Get(p.UserInfoURL)
	if err != nil {
		return nil, &util.UpstreamError{Op: "userinfo", Err: err}
	}
	if resp.IsError() {
		return nil, &util.UpstreamError{
			Op:         "userinfo",
			StatusCode: resp.StatusCode(),
			Rejected:   true,
			Err:        fmt.Errorf("unexpected response: %s", resp.Status()),
		}
	}
	profile, err := util.ProfileFromClaims(claims)
	if err != nil {
		return nil, &util.UpstreamError{Op: "userinfo", StatusCode: resp.StatusCode(), Rejected: true, Err: err}
	}
	return profile, nil
}
