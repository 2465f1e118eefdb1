/* Copyright 2025 Circadian Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/circadianapp/circadian/pkg/server/app"
	"github.com/circadianapp/circadian/pkg/server/buildinfo"
	"github.com/circadianapp/circadian/pkg/server/config"
	"github.com/circadianapp/circadian/pkg/server/controllers"
	"github.com/circadianapp/circadian/pkg/server/log"
	mw "github.com/circadianapp/circadian/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type startFlags struct {
	storeFlags
	port        string
	metricsAddr string
	rateLimit   string
	rateBurst   string
}

func newStartCmd() *cobra.Command {
	var f startFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), f)
		},
	}

	f.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&f.port, "port", "", "Server port (env: PORT, default: 8000)")
	fs.StringVar(&f.metricsAddr, "metricsAddr", "", "Address serving /metrics, e.g. :9090 (env: METRICS_ADDR, default: disabled)")
	fs.StringVar(&f.rateLimit, "rateLimit", "", "Requests per second allowed per client IP on write routes, 0 disables (env: RATE_LIMIT, default: 50)")
	fs.StringVar(&f.rateBurst, "rateBurst", "", "Burst size for the rate limiter (env: RATE_BURST, default: 100)")

	return cmd
}

func (f startFlags) params() config.Params {
	p := f.storeFlags.params()
	p.Port = f.port
	p.MetricsAddr = f.metricsAddr
	p.RateLimit = f.rateLimit
	p.RateBurst = f.rateBurst

	return p
}

func newMetricsServer(a *app.App, addr string) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", a.Metrics.Handler()).Methods("GET")

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func runStart(ctx context.Context, f startFlags) error {
	cfg, err := config.New(f.params())
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := initApp(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "initializing app")
	}
	defer func() {
		if err := a.Store.Close(); err != nil {
			log.ErrorWrap(err, "closing store")
		}
	}()

	var limiter *mw.RateLimiter
	if cfg.RateLimitEnabled() {
		limiter = mw.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
		defer limiter.Stop()
	}

	ctl := controllers.New(&a)
	rc := controllers.RouteConfig{
		Routes:      controllers.NewRoutes(&a, ctl),
		Controllers: ctl,
		Limiter:     limiter,
	}

	r, err := controllers.NewRouter(&a, rc)
	if err != nil {
		return errors.Wrap(err, "initializing router")
	}

	servers := []*http.Server{{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, newMetricsServer(&a, cfg.MetricsAddr))
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- errors.Wrapf(err, "serving on %s", srv.Addr)
			}
		}(srv)
	}

	log.WithFields(log.Fields{
		"version":      buildinfo.Version,
		"port":         cfg.Port,
		"store":        cfg.Store,
		"metrics_addr": cfg.MetricsAddr,
	}).Info("Circadian server starting")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case serveErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorWrap(err, "shutting down server")
		}
	}

	return serveErr
}
