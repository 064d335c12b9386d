// Package server wires the inbound HTTP server and its middleware stack.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamspace/streamspace-services-content/internal/controllers"
	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

const readinessTimeout = 2 * time.Second

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	cfg loader.Server,
	tel *Telemetry,
	upload *controllers.UploadHandler,
	content *controllers.ContentHandler,
	pool *pgxpool.Pool,
	logger log.Logger,
) *khttp.Server {
	middlewares := []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			metricsMiddleware(tel),
			logging.Server(logger),
		),
	}

	opts := middlewares
	if cfg.HTTP.Network != "" {
		opts = append(opts, khttp.Network(cfg.HTTP.Network))
	}
	if cfg.HTTP.Addr != "" {
		opts = append(opts, khttp.Address(cfg.HTTP.Addr))
	}
	if d := loader.MustDuration(cfg.HTTP.Timeout, 0); d > 0 {
		opts = append(opts, khttp.Timeout(d))
	}

	srv := khttp.NewServer(opts...)

	route := srv.Route("/v1")
	route.POST("/content/upload", upload.Upload)
	route.GET("/content", content.List)
	route.GET("/content/{id}", content.Get)

	registerOps(srv, tel, pool)
	return srv
}

// metricsMiddleware 基于 OTel Meter 构建请求计数与时延直方图中间件。
// 指标初始化失败时退化为直通中间件，不阻塞启动。
func metricsMiddleware(tel *Telemetry) middleware.Middleware {
	meter := tel.MeterProvider.Meter("streamspace-content/server")
	seconds, errSeconds := metrics.DefaultSecondsHistogram(meter, metrics.DefaultServerSecondsHistogramName)
	requests, errRequests := metrics.DefaultRequestsCounter(meter, metrics.DefaultServerRequestsCounterName)
	if errSeconds != nil || errRequests != nil {
		return func(h middleware.Handler) middleware.Handler { return h }
	}
	return metrics.Server(
		metrics.WithSeconds(seconds),
		metrics.WithRequests(requests),
	)
}

// registerOps 注册运维端点：存活、就绪与指标。
func registerOps(srv *khttp.Server, tel *Telemetry, pool *pgxpool.Pool) {
	srv.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	srv.Handle("/metrics", promhttp.HandlerFor(tel.Registry, promhttp.HandlerOpts{}))
}
