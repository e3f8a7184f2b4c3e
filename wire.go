//go:build wireinject

package main

import (
	"context"

	"fathomupload/ioc"
	"fathomupload/pkg/server"
	"github.com/google/wire"
)

func InitApp(ctx context.Context, path ioc.ConfigPath) (*server.HTTPServer, func(), error) {
	panic(wire.Build(
		ioc.InitConfig,
		ioc.InitLogger,
		ioc.InitStore,
		ioc.InitServerStats,
		ioc.InitMetrics,
		ioc.InitGatherer,
		ioc.InitReporter,
		ioc.InitSnapshotter,
		ioc.InitIngestService,
		ioc.InitIndexFlow,
		ioc.InitUploadHandler,
		ioc.InitStatusHandler,
		ioc.InitGinEngine,
		ioc.InitHeartbeat,
		ioc.InitScheduler,
		server.NewHTTPServer,
	))
}
