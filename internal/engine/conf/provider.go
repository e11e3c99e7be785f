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
	"github.com/go-arcade/gatekeeper/internal/pkg/catalog"
	"github.com/go-arcade/gatekeeper/internal/pkg/notify"
	"github.com/go-arcade/gatekeeper/pkg/cache"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/sso"
	"github.com/go-arcade/gatekeeper/pkg/trace"
	"github.com/google/wire"
)

// ProviderSet splits AppConfig into the per-component configurations
var ProviderSet = wire.NewSet(
	ProvideLogConf,
	ProvideHttpConf,
	ProvideDatabaseConf,
	ProvideRedisConf,
	ProvideSSOConf,
	ProvideNotifyConf,
	ProvideCaptchaConf,
	ProvideCatalogConf,
	ProvideTraceConf,
)

func ProvideLogConf(appConf AppConfig) *log.Conf {
	return &appConf.Log
}

func ProvideHttpConf(appConf AppConfig) *http.Http {
	return &appConf.Http
}

func ProvideDatabaseConf(appConf AppConfig) database.Database {
	return appConf.Database
}

func ProvideRedisConf(appConf AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideSSOConf(appConf AppConfig) *sso.ProviderConfig {
	return &appConf.SSO
}

func ProvideNotifyConf(appConf AppConfig) notify.Conf {
	return appConf.Notify
}

func ProvideCaptchaConf(appConf AppConfig) CaptchaConf {
	return appConf.Captcha
}

func ProvideCatalogConf(appConf AppConfig) catalog.Conf {
	return appConf.Catalog
}

func ProvideTraceConf(appConf AppConfig) trace.Conf {
	return appConf.Trace
}
