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

package app

import (
	"github.com/go-arcade/gatekeeper/internal/engine/router"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/gofiber/fiber/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	HttpApp *fiber.App
	Http    *http.Http
	Logger  *log.Logger
	Tracer  *sdktrace.TracerProvider
}

// NewApp assembles the HTTP application. The returned cleanup releases the
// database pool and must run after the server has stopped. tp is installed
// globally before any request is served.
func NewApp(
	rt *router.Router,
	httpConf *http.Http,
	logger *log.Logger,
	manager database.Manager,
	tp *sdktrace.TracerProvider,
) (*App, func(), error) {
	httpApp := rt.Router()

	cleanup := func() {
		logger.Log.Info("closing database connections...")
		if err := manager.Close(); err != nil {
			logger.Log.Errorw("failed to close database", "error", err)
		}
	}

	app := &App{
		HttpApp: httpApp,
		Http:    httpConf,
		Logger:  logger,
		Tracer:  tp,
	}
	return app, cleanup, nil
}
