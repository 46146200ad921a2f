package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig 聚合运行时配置，通过环境变量（或 .env）注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	DBPath   string `envconfig:"DB_PATH" default:"sales.db"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// 为空时不启用报表缓存与写接口限流
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`

	// 写接口限流：窗口内每个客户/IP 的最大请求数
	WriteRateLimit  int           `envconfig:"WRITE_RATE_LIMIT" default:"100"`
	WriteRateWindow time.Duration `envconfig:"WRITE_RATE_WINDOW" default:"1s"`

	// Kafka 集群地址（逗号分隔），为空时不发布销售事件
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"sales-recorded"`
}

// Load 先加载 .env（已存在的环境变量优先），再读取并校验配置。
// files 为空时读取当前目录的 .env，文件不存在不算错误。
func Load(files ...string) (AppConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.WriteRateLimit <= 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT must be > 0")
	}
	if c.WriteRateWindow < time.Second {
		return fmt.Errorf("WRITE_RATE_WINDOW must be at least 1s")
	}
	if c.ReportCacheTTL <= 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must be > 0")
	}
	brokers := c.KafkaBrokers[:0]
	for _, b := range c.KafkaBrokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.KafkaBrokers = brokers
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC must not be empty when KAFKA_BROKERS is set")
	}
	return nil
}

func (c AppConfig) RedisEnabled() bool { return c.RedisAddr != "" }

func (c AppConfig) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }
