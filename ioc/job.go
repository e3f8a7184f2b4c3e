package ioc

import (
	"fathomupload/internal/app"
	"fathomupload/internal/job"
	"fathomupload/internal/stats"
	"go.uber.org/zap"
)

// InitHeartbeat 构建心跳任务。
func InitHeartbeat(snapshotter stats.Snapshotter, logger *zap.Logger) *job.Heartbeat {
	return job.NewHeartbeat(snapshotter, logger)
}

// InitScheduler 构建定时任务调度器。
func InitScheduler(cfg app.Config, heartbeat *job.Heartbeat, logger *zap.Logger) *job.Scheduler {
	return job.NewScheduler("heartbeat", cfg.Job.HeartbeatCron, heartbeat.Run, logger)
}
