package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"fathomupload/internal/app"
	"fathomupload/internal/job"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// HTTPServer 封装 HTTP 服务运行所需的依赖。
type HTTPServer struct {
	Engine  *gin.Engine
	Logger  *zap.Logger
	Config  app.Config
	Indexes *app.IndexFlow
	Job     *job.Scheduler
}

// NewHTTPServer 构建 HTTPServer。
func NewHTTPServer(engine *gin.Engine, logger *zap.Logger, cfg app.Config, indexes *app.IndexFlow, scheduler *job.Scheduler) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPServer{
		Engine:  engine,
		Logger:  logger,
		Config:  cfg,
		Indexes: indexes,
		Job:     scheduler,
	}
}

// Run 启动 HTTP 服务及相关后台任务，ctx 结束后优雅退出，等待进行中的上传写入完成。
func (s *HTTPServer) Run(ctx context.Context) error {
	listen := strings.TrimSpace(s.Config.HTTP.Listen)
	if listen == "" {
		listen = ":3003"
	}

	if s.Job != nil {
		cancelJob := s.Job.Start(ctx)
		defer cancelJob()
	}

	if s.Config.Indexes.EnsureOnStart && s.Indexes != nil {
		if err := s.Indexes.Run(ctx); err != nil {
			s.Logger.Error("ensure indexes on start failed", zap.Error(err))
		}
	} else {
		s.Logger.Info("index creation on start skipped by configuration")
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server starting", zap.String("listen", listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 释放资源。
func (s *HTTPServer) Shutdown(context.Context) {
	_ = s.Logger.Sync()
}
