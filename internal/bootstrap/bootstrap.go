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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/gatekeeper/internal/app"
	"github.com/go-arcade/gatekeeper/internal/engine/conf"
	"github.com/go-arcade/gatekeeper/internal/engine/model"
	"github.com/go-arcade/gatekeeper/pkg/database"
	"github.com/go-arcade/gatekeeper/pkg/log"
)

// InitAppFunc is the wire-generated injector
type InitAppFunc func(appConf conf.AppConfig) (*app.App, func(), error)

// Bootstrap loads the configuration and builds the App through initApp
func Bootstrap(configFile string, initApp InitAppFunc) (*app.App, func(), error) {
	appConf, err := conf.NewConf(configFile)
	if err != nil {
		return nil, nil, err
	}
	return initApp(appConf)
}

// Run serves until SIGINT/SIGTERM, then shuts the listener down within
// http.shutdownTimeout and runs cleanup
func Run(a *app.App, cleanup func()) error {
	logger := a.Logger.Log
	httpConf := a.Http
	addr := fmt.Sprintf("%s:%d", httpConf.Host, httpConf.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	serveErr := make(chan error, 1)
	go func() {
		logger.Infow("HTTP listener started", "address", addr, "contextPath", httpConf.ContextPath)
		var err error
		if httpConf.TLS.CertFile != "" && httpConf.TLS.KeyFile != "" {
			err = a.HttpApp.ListenTLS(addr, httpConf.TLS.CertFile, httpConf.TLS.KeyFile)
		} else {
			err = a.HttpApp.Listen(addr)
		}
		serveErr <- err
	}()

	var runErr error
	select {
	case sig := <-quit:
		logger.Infof("received signal: %v, shutting down gracefully...", sig)
	case err := <-serveErr:
		if err != nil {
			logger.Errorw("HTTP listener failed", "address", addr, "error", err)
			runErr = err
		}
	}

	timeout := time.Duration(httpConf.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("HTTP server shutdown error", "error", err)
	} else {
		logger.Info("HTTP server shut down gracefully")
	}

	cleanup()
	logger.Info("server shutdown complete")
	return runErr
}

// Migrate creates or updates the tables of every model
func Migrate(configFile string) error {
	appConf, err := conf.NewConf(configFile)
	if err != nil {
		return err
	}
	if _, err := log.ProvideLogger(&appConf.Log); err != nil {
		return err
	}

	manager, err := database.NewManager(appConf.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	if err := manager.MySQL().AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	log.Infow("migration complete", "tables", len(model.AllModels()))
	return nil
}
