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

package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// Profile is the identity asserted by the provider for an access token
type Profile struct {
	Subject           string
	Email             string
	Name              string
	PreferredUsername string
	// Raw is the full userinfo payload as returned by the provider
	Raw map[string]any
}

// ProfileFromClaims maps standard OIDC claims
func ProfileFromClaims(claims map[string]any) (*Profile, error) {
	p := &Profile{Raw: claims}
	p.Subject, _ = claims["sub"].(string)
	p.Email, _ = claims["email"].(string)
	p.Name, _ = claims["name"].(string)
	p.PreferredUsername, _ = claims["preferred_username"].(string)
	if p.Subject == "" {
		return nil, errors.New("userinfo response has no sub claim")
	}
	return p, nil
}

// UpstreamError reports a failed provider call. Rejected is set when the
// provider answered but refused (non-2xx or malformed payload); otherwise
// the provider could not be reached.
type UpstreamError struct {
	Op         string
	StatusCode int
	Rejected   bool
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sso %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sso %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ExchangeCode trades an authorization code at cfg's token endpoint. The
// redirect URI is sent as given by the caller.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, client *http.Client, code, redirectURI string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	token, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	if err != nil {
		return "", classify("exchange", err)
	}
	return token.AccessToken, nil
}

func classify(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &UpstreamError{Op: op, StatusCode: status, Rejected: true, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Op: op, Err: err}
	}
	// e.g. a 2xx response without access_token
	return &UpstreamError{Op: op, Rejected: true, Err: err}
}
