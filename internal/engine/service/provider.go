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

package service

import (
	"context"

	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/sso"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewServices,
	ProvideSSOProvider,
	ProvideCatalogClient,
)

// ProvideSSOProvider returns a nil provider when sso.type is empty
func ProvideSSOProvider(conf *sso.ProviderConfig) (sso.IProvider, error) {
	if !conf.Enabled() {
		log.Info("single sign-on disabled")
		return nil, nil
	}
	return sso.NewSSOProvider(context.Background(), conf)
}

func ProvideCatalogClient(conf catalog.Conf) catalog.IClient {
	return catalog.NewClient(conf)
}
