package router

import (
	"instagen/internal/api/dto"
	"instagen/internal/controller"
	"instagen/internal/middleware"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "instagen/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Post *controller.PostController
}

// Options 路由配置
type Options struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Gate        *middleware.InflightGate
}

// SetupRouter 初始化 gin 引擎并注册所有路由
func SetupRouter(ctls *Controllers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gate == nil {
		opts.Gate = middleware.NewInflightGate()
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			opts.Logger.Fatal("register validators", zap.Error(err))
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	InitRoutes(r, ctls, opts.Gate)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers, gate *middleware.InflightGate) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:5000/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	{
		api.GET("/health", ctls.Post.Health)

		// POST /api/generate 同一客户端同时只能有一个生成请求
		api.POST("/generate", middleware.SingleFlight(gate), ctls.Post.Generate)

		// POST /api/export
		api.POST("/export", ctls.Post.Export)
	}
}

// corsConfig 前端与后端通常不同源
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}

	if len(origins) == 0 || (len(origins) == 1 && strings.TrimSpace(origins[0]) == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
