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

	"github.com/go-arcade/gatekeeper/pkg/sso/util"
)

// Profile is re-exported for callers of the bridge
type Profile = util.Profile

// UpstreamError is re-exported for callers of the bridge
type UpstreamError = util.UpstreamError

// IProvider is the identity provider bridge: a one-time authorization code
// becomes an access token, which in turn yields the user profile.
type IProvider interface {
	// Name is stored as the provider of linked identities
	Name() string
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
