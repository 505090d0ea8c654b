package main

import (
	"context"
	"errors"
	"instagen/internal/config"
	"instagen/internal/controller"
	"instagen/internal/middleware"
	"instagen/internal/router"
	"instagen/internal/service"
	"instagen/internal/task"
	"instagen/pkg/logger"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Postgen API
// @version 1.0
// @description Instagram 帖子文案生成与 Excel 导出
// @BasePath /
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl = zl.With(zap.String("service", cfg.ServiceName))

	// 3. 初始化依赖
	deps := initDependencies(cfg, zl)

	// 4. 启动定时任务
	stopTasks := initTasks(cfg, deps, zl)
	defer stopTasks()

	// 5. 初始化路由
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(deps.Controllers, router.Options{
		Logger:      zl,
		CORSOrigins: cfg.CORSOrigins,
		Gate:        middleware.NewInflightGate(),
	})

	// 6. 启动服务
	startServer(cfg, r, zl)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Stats       *service.Stats
	Services    *Services
	Controllers *router.Controllers
}

// Services 服务集合
type Services struct {
	Fabricator *service.FabricatorService
	Export     *service.ExportService
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, zl *zap.Logger) *Dependencies {
	stats := service.NewStats()

	opts := []service.FabricatorOption{service.WithStats(stats)}
	if cfg.RandomSeed != 0 {
		opts = append(opts, service.WithSeed(cfg.RandomSeed, cfg.RandomSeed))
		zl.Info("fabricator seeded", zap.Uint64("seed", cfg.RandomSeed))
	}

	fabricator, err := service.NewFabricatorService(opts...)
	if err != nil {
		zl.Fatal("init fabricator", zap.Error(err))
	}

	services := &Services{
		Fabricator: fabricator,
		Export:     service.NewExportService(stats),
	}

	return &Dependencies{
		Stats:    stats,
		Services: services,
		Controllers: &router.Controllers{
			Post: controller.NewPostController(services.Fabricator, services.Export, zl),
		},
	}
}

// ==================== 定时任务 ====================

// initTasks 启动定时任务，返回停止函数
func initTasks(cfg *config.Config, deps *Dependencies, zl *zap.Logger) func() {
	if !cfg.StatsEnabled() {
		zl.Info("stats task disabled")
		return func() {}
	}

	statsTask := task.NewStatsTask(deps.Stats, cfg.StatsCron, zl)
	if err := statsTask.Start(); err != nil {
		zl.Fatal("start stats task", zap.String("spec", cfg.StatsCron), zap.Error(err))
	}
	return func() {
		statsTask.Stop()
		// 退出前输出一次最终统计
		statsTask.Run()
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(cfg *config.Config, r *gin.Engine, zl *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	// 异步启动服务
	go func() {
		zl.Info("server started", zap.String("addr", cfg.Addr()), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}

	zl.Info("server exited")
}
