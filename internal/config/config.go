package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 是保存用户、会话和日志的 sqlite 数据库
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type MongoConfig struct {
	URI       string        `mapstructure:"uri"`
	Database  string        `mapstructure:"database"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ListLimit int64         `mapstructure:"list_limit"`
}

// RedisConfig 可选，Addr 为空时不使用 redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// NotifyConfig 控制每日任务摘要。没有 SendGrid key 时
// 摘要写入日志而不发邮件。
type NotifyConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Cron           string `mapstructure:"cron"`
	Timezone       string `mapstructure:"timezone"`
	Recipient      string `mapstructure:"recipient"`
	Sender         string `mapstructure:"sender"`
	SenderName     string `mapstructure:"sender_name"`
	SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
}

type SearchConfig struct {
	Threshold   float64 `mapstructure:"threshold"`
	MinMatchLen int     `mapstructure:"min_match_len"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Search   SearchConfig   `mapstructure:"search"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.path", "data/berdoz.db")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "berdoz_management")
	v.SetDefault("mongo.timeout", "10s")
	v.SetDefault("mongo.list_limit", 1000)

	// 没有合适默认值的 key 也要注册，
	// 这样 Unmarshal 时 AutomaticEnv 才能读到
	for _, k := range []string{
		"jwt.secret", "security.encryption_key", "redis.addr", "redis.password",
		"notify.recipient", "notify.sender", "notify.sendgrid_api_key", "log.file",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.issuer", "berdoz")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("upload.dir", "data/uploads")
	v.SetDefault("upload.max_bytes", 50<<20)

	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.cron", "0 6 * * *")
	v.SetDefault("notify.timezone", "Asia/Baghdad")
	v.SetDefault("notify.sender_name", "Berdoz School")

	v.SetDefault("search.threshold", 0.3)
	v.SetDefault("search.min_match_len", 2)
	v.SetDefault("app.page_size", 20)
}

// Load 从给定路径（例如 "config.yaml"）加载配置。
// 文件不存在不算错误：默认值加上 BERDOZ_* 环境变量
// （以及存在时的 .env 文件）就足以运行。
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = read(path)
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func read(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// 环境变量覆盖，例如 BERDOZ_MONGO_URI=mongodb://db:27017
	v.SetEnvPrefix("BERDOZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 拒绝会使用可猜测密钥运行的配置
func (c *Config) Validate() error {
	if c.Server.Mode == "debug" || c.Server.Mode == "test" {
		return nil
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.Security.EncryptionKey == "" {
		return errors.New("config: security.encryption_key is required")
	}
	return nil
}

// Get 返回已加载的全局配置。
// 启动时调用一次 Load()。
func Get() *Config {
	return appConfig
}
