/*
 * Copyright (C) 2019-Present Pivotal Software, Inc. All rights reserved.
 *
 * This program and the accompanying materials are made available under the terms
 * of the Apache License, Version 2.0 (the "License”); you may not use this file
 * except in compliance with the License. You may obtain a copy of the License at:
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed
 * under the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
 * CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 */

package serve

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vehicles/pkg/data"
)

const (
	DefaultAddr     = "0.0.0.0:3000"
	shutdownTimeout = 2 * time.Second
	maxScenarioSize = 1 << 20
)

// VehiclesServer serves scenario runs over HTTP. Store may be nil, in which case runs are not persisted.
type VehiclesServer struct {
	Addr   string
	Store  data.RunStore
	Logger *zap.SugaredLogger

	srv      *http.Server
	upgrader websocket.Upgrader
}

func (vs *VehiclesServer) Handler() http.Handler {
	logger := vs.logger()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.NoCache)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(logger.Desugar()),
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)

	router.Mount("/debug", middleware.Profiler())
	router.Method(http.MethodPost, "/run", gziphandler.GzipHandler(&runHandler{store: vs.Store, logger: logger.Named("run")}))
	router.Get("/stream", (&streamHandler{upgrader: vs.upgrader, logger: logger.Named("stream")}).ServeHTTP)

	return router
}

// Serve starts listening in the background. The returned channel receives the error that
// stopped the server, if any, and is closed once the server stops.
func (vs *VehiclesServer) Serve() <-chan error {
	addr := vs.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	vs.srv = &http.Server{
		Addr:    addr,
		Handler: vs.Handler(),
	}

	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		vs.logger().Infow("listening", "addr", addr)
		if err := vs.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	return errs
}

func (vs *VehiclesServer) Shutdown() error {
	if vs.srv == nil {
		return nil
	}
	vs.logger().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := vs.srv.Shutdown(ctx); err != nil {
		return err
	}

	vs.logger().Info("done")
	return nil
}

func (vs *VehiclesServer) logger() *zap.SugaredLogger {
	if vs.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return vs.Logger
}
