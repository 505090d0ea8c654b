package task

import (
	"instagen/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StatsTask 定期输出生成/导出统计
type StatsTask struct {
	Stats  *service.Stats
	Cron   *cron.Cron
	logger *zap.Logger
	spec   string
}

func NewStatsTask(stats *service.Stats, spec string, logger *zap.Logger) *StatsTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsTask{
		Stats:  stats,
		Cron:   cron.New(cron.WithSeconds()), // 支持秒级控制
		logger: logger,
		spec:   spec,
	}
}

// Start 注册并启动定时任务
func (t *StatsTask) Start() error {
	if _, err := t.Cron.AddFunc(t.spec, t.Run); err != nil {
		return err
	}

	t.Cron.Start()
	t.logger.Info("stats task started", zap.String("spec", t.spec))
	return nil
}

// Stop 停止调度，等待正在执行的任务结束
func (t *StatsTask) Stop() {
	ctx := t.Cron.Stop()
	<-ctx.Done()
	t.logger.Info("stats task stopped")
}

// Run 输出一次统计快照
func (t *StatsTask) Run() {
	snap := t.Stats.Snapshot()
	t.logger.Info("service stats",
		zap.Int64("generations", snap.Generations),
		zap.Int64("posts", snap.Posts),
		zap.Int64("exports", snap.Exports),
		zap.Int64("failures", snap.Failures),
	)
}
