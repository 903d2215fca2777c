package config

import (
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppConfig 包含所有应用程序的配置
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Lending  LendingConfig  `mapstructure:"lending"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DatabaseConfig 包含所有数据库的配置
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig PostgreSQL 连接配置
type PostgresConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"` // 连接最大生命周期（秒）
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 缓存相关配置
type CacheConfig struct {
	Prefix        string         `mapstructure:"prefix"`
	EstimatedKeys uint           `mapstructure:"estimated_keys"`
	FpRate        float64        `mapstructure:"fp_rate"`
	TTL           CacheTTLConfig `mapstructure:"ttl"`
}

// CacheTTLConfig 各实体类型的缓存过期时间配置 (单位：秒)。
// Genre 小且极少变化，默认 24 小时；其余实体默认 1 小时。
type CacheTTLConfig struct {
	Author  int `mapstructure:"author"`
	Book    int `mapstructure:"book"`
	Genre   int `mapstructure:"genre"`
	Reader  int `mapstructure:"reader"`
	Lending int `mapstructure:"lending"`
}

// LendingConfig 借阅业务规则配置
type LendingConfig struct {
	DurationDays        int   `mapstructure:"duration_days"`         // 借期（天）
	FinePerDayCents     int64 `mapstructure:"fine_per_day_cents"`    // 每日逾期罚金（分）
	MaxOutstandingCount int   `mapstructure:"max_outstanding_count"` // 同一读者最大未归还数
}

// LoggingConfig 日志相关配置
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// RabbitMQConfig RabbitMQ 连接配置
type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// GlobalConfig 是全局配置实例
var GlobalConfig = new(AppConfig)

func InitConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := v.Unmarshal(GlobalConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 监听配置文件变化 (可选)
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("配置文件已更改: %s", e.Name)
		if err := v.Unmarshal(GlobalConfig); err != nil {
			log.Printf("警告: 重新解析配置文件失败: %v", err)
		} else {
			log.Println("Info: 配置已重新加载.")
		}
	})

	log.Printf("Info: 成功加载并解析配置文件: %s", path)
	return GlobalConfig, nil
}
