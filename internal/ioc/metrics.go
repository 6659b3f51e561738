package ioc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/simonmuehling/educafric-platform-sub010/internal/service/notification"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var MetricsFxOpt = fx.Options(
	fx.Provide(
		InitMetricsRegistry,
		InitNotificationMetrics,
	),
	fx.Invoke(MetricsLifecycle),
)

func InitMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func InitNotificationMetrics(reg *prometheus.Registry) *notification.Metrics {
	return notification.NewMetrics(reg)
}

// MetricsLifecycle 在 metrics.addr 上暴露 /metrics，未配置地址时不启动
func MetricsLifecycle(lc fx.Lifecycle, reg *prometheus.Registry, logger *zap.Logger) {
	addr := viper.GetString("metrics.addr")
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	svr := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() {
				if serveErr := svr.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
					logger.Error("[educafric] metrics server stopped", zap.Error(serveErr))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return svr.Shutdown(ctx)
		},
	})
}
