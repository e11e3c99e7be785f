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

package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/gatekeeper/internal/engine/errs"
	"github.com/go-arcade/gatekeeper/internal/engine/service"
	"github.com/go-arcade/gatekeeper/pkg/http"
	"github.com/go-arcade/gatekeeper/pkg/http/middleware"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
	"github.com/go-arcade/gatekeeper/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Router struct {
	Http     *http.Http
	Services *service.Services
	Metrics  *metrics.Metrics
}

func NewRouter(httpConf *http.Http, services *service.Services, m *metrics.Metrics) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Metrics:  m,
	}
}

func (rt *Router) Router() *fiber.App {
	bodyLimit := rt.Http.BodyLimit * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gatekeeper",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             bodyLimit,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          rt.errorHandler,
	})

	app.Use(
		middleware.RequestMiddleware(),
		middleware.TraceMiddleware(),
		middleware.ExceptionMiddleware,
		middleware.CorsMiddleware(rt.Http.AllowOrigins),
		middleware.AccessLogMiddleware(rt.Http.AccessLog),
		middleware.UnifiedResponseMiddleware(),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	api := app.Group(rt.Http.ContextPath)
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey)
	rt.userRouter(api, auth)
	rt.organizationRouter(api, auth)
	rt.projectRouter(api, auth)

	// must stay after every route
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrMsg(c, fiber.StatusNotFound, http.NotFound, "request path not found")
	})

	return app
}

// errorHandler renders errors returned by handlers. Classified errors keep
// their message and kind; anything else is reported as an internal error.
func (rt *Router) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return http.WithRepErr(c, fe.Code, http.ResponseErr{ErrCode: fe.Code, ErrMsg: fe.Message})
	}

	kind := errs.KindOf(err)
	status, rep := statusOf(kind)
	if status >= fiber.StatusInternalServerError {
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		log.Debugw("request rejected", "method", c.Method(), "path", c.Path(), "error", err)
	}

	body := http.ResponseErr{
		ErrCode: rep.Code,
		Status:  string(kind),
		ErrMsg:  errs.Message(err),
	}
	if rt.Http.Debug {
		body.Traceback = fmt.Sprintf("%+v", err)
	}
	return http.WithRepErr(c, status, body)
}

func statusOf(kind errs.Kind) (int, *http.Response) {
	switch kind {
	case errs.Conflict:
		return fiber.StatusConflict, http.Conflict
	case errs.NotFound:
		return fiber.StatusNotFound, http.NotFound
	case errs.AccessDenied:
		return fiber.StatusForbidden, http.PermissionDenied
	case errs.RateLimited:
		return fiber.StatusTooManyRequests, http.TooManyRequests
	case errs.UpstreamFailed:
		return fiber.StatusBadGateway, http.UpstreamFailed
	case errs.LoginError:
		return fiber.StatusUnauthorized, http.AuthenticationFailed
	case errs.InvalidParam:
		return fiber.StatusBadRequest, http.BadRequest
	default:
		return fiber.StatusInternalServerError, http.InternalError
	}
}

// principal is the user id resolved by the authorization middleware
func principal(c *fiber.Ctx) string {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return ""
	}
	return claims.UserId()
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errs.Wrap(errs.InvalidParam, err, "%s", http.RequestParameterParsingFailed.Msg)
	}
	return nil
}
