package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/dbp-hq/governance/pkg/application"
	"github.com/dbp-hq/governance/pkg/configuration"
	"github.com/dbp-hq/governance/pkg/constants"
	"github.com/dbp-hq/governance/pkg/metrics"
	"github.com/dbp-hq/governance/pkg/middleware"
	"github.com/dbp-hq/governance/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(options.Configuration.Origin),
		middleware.RequestParams(),
	}
	app.RegisterMiddleware(middlewares...)

	app.RegisterControllers(NewHealthController(options.Pool))
	if options.Configuration.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(options.Configuration.Prometheus.Path))
	}

	return server.NewHTTPServer(app, NotFound(), MethodNotAllowed()), nil
}
