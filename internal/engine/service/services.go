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
	"github.com/go-arcade/gatekeeper/internal/engine/conf"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/go-arcade/gatekeeper/internal/pkg/notify"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
	"github.com/go-arcade/gatekeeper/pkg/sso"
)

// Services groups the services handed to the router
type Services struct {
	Captcha      *CaptchaService
	User         *UserService
	Organization *OrganizationService
	Project      *ProjectService
}

func NewServices(
	store repo.IStore,
	notifier notify.INotifier,
	provider sso.IProvider,
	client catalog.IClient,
	httpConf *http.Http,
	captchaConf conf.CaptchaConf,
	m *metrics.Metrics,
) *Services {
	captchaService := NewCaptchaService(store, notifier, captchaConf, m)
	orgService := NewOrganizationService(store, httpConf.Auth, m)

	return &Services{
		Captcha:      captchaService,
		User:         NewUserService(store, captchaService, provider, httpConf.Auth, m),
		Organization: orgService,
		Project:      NewProjectService(store, orgService, client, m),
	}
}
