//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/gatekeeper/internal/app"
	"github.com/go-arcade/gatekeeper/internal/engine/conf"
	"github.com/go-arcade/gatekeeper/internal/engine/repo"
	"github.com/go-arcade/gatekeeper/internal/engine/router"
	"github.com/go-arcade/gatekeeper/internal/engine/service"
	"github.com/go-arcade/gatekeeper/internal/pkg/notify"
	"github.com/go-arcade/gatekeeper/pkg/cache"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/go-arcade/gatekeeper/pkg/log"
	"github.com/go-arcade/gatekeeper/pkg/metrics"
	"github.com/go-arcade/gatekeeper/pkg/trace"
	"github.com/google/wire"
)

func initApp(appConf conf.AppConfig) (*app.App, func(), error) {
	panic(wire.Build(
		// configuration
		conf.ProviderSet,
		log.ProviderSet,
		// storage
		database.ProviderSet,
		cache.ProviderSet,
		repo.ProviderSet,
		// outbound
		notify.ProviderSet,
		metrics.ProviderSet,
		trace.ProviderSet,
		// services and routes
		service.ProviderSet,
		router.ProviderSet,
		app.NewApp,
	))
}
