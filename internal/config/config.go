package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// ==================== 服务端配置 ====================

// Config 服务端配置，全部来自环境变量
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"postgen-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"5000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// StatsCron 统计日志的 cron 表达式 (秒级)，off 表示不启动
	StatsCron string `env:"STATS_CRON" envDefault:"0 */10 * * * *"`

	// RandomSeed 为 0 时按时间播种
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`
}

// Load 解析服务端配置
//
// 优先级 (高 -> 低):
// 1. 环境变量
// 2. .env 文件 (如存在)
// 3. struct tag 默认值
func Load() (*Config, error) {
	LoadEnvFiles()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("HTTP_PORT out of range: %d", cfg.HTTPPort)
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return cfg, nil
}

// Addr HTTP 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// StatsEnabled 是否启动统计任务
func (c *Config) StatsEnabled() bool {
	v := strings.TrimSpace(c.StatsCron)
	return v != "" && !strings.EqualFold(v, "off")
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// ==================== 客户端配置 ====================

// ClientConfig 命令行客户端配置
type ClientConfig struct {
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:5000/api"`
	Timeout    time.Duration `env:"CLIENT_TIMEOUT" envDefault:"30s"`
	ExportDir  string        `env:"EXPORT_DIR" envDefault:"."`
}

// LoadClient 解析客户端配置
func LoadClient() (*ClientConfig, error) {
	LoadEnvFiles()

	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("CLIENT_TIMEOUT must be positive")
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

// LoadEnvFiles 加载当前目录的 .env，已存在的环境变量不会被覆盖
func LoadEnvFiles() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}
