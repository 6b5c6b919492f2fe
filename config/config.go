package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Mode 决定分数与提交归属于个人还是队伍
type Mode string

const (
	ModeTeams Mode = "teams"
	ModeUsers Mode = "users"
)

const (
	envPrefix = "MANUALCTF"
	envFile   = ".env"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Mode      Mode            `yaml:"mode"      envconfig:"MODE"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"          envconfig:"DRIVER"`
	DSN             string        `yaml:"dsn"             envconfig:"DSN"`
	MaxIdleConns    int           `yaml:"maxIdleConns"    envconfig:"MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"maxOpenConns"    envconfig:"MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" envconfig:"CONN_MAX_LIFETIME"`
}

// RedisConfig 为空地址时不启用 Redis（排行榜缓存与限流随之关闭）
type RedisConfig struct {
	Addr     string `yaml:"addr"     envconfig:"ADDR"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db"       envconfig:"DB"`
	PoolSize int    `yaml:"poolSize" envconfig:"POOL_SIZE"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" envconfig:"SECRET"`
	TTL    time.Duration `yaml:"ttl"    envconfig:"TTL"`
}

type RateLimitConfig struct {
	Attempts int           `yaml:"attempts" envconfig:"ATTEMPTS"`
	Window   time.Duration `yaml:"window"   envconfig:"WINDOW"`
}

type LogConfig struct {
	Level  string `yaml:"level"  envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`
}

var globalConfig = Default()

// Default 未提供配置文件与环境变量时使用的默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{
			Driver:          "mysql",
			DSN:             "root:123456@tcp(localhost:3306)/dali_manual?charset=utf8mb4&parseTime=True&loc=Local",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 100,
		},
		JWT: JWTConfig{
			Secret: "a-very-secure-secret-that-should-be-in-config-file",
			TTL:    7 * 24 * time.Hour,
		},
		Mode: ModeTeams,
		RateLimit: RateLimitConfig{
			Attempts: 10,
			Window:   time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// Load 依次应用 YAML 配置文件与环境变量；工作目录下的 .env 先并入环境变量，
// 已存在的变量不会被覆盖
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}
	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeTeams, ModeUsers:
	default:
		return fmt.Errorf("invalid mode %q, expected %q or %q", c.Mode, ModeTeams, ModeUsers)
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.RateLimit.Attempts < 0 {
		return errors.New("ratelimit attempts must not be negative")
	}
	return nil
}

// GetConfig 返回最近一次加载的配置
func GetConfig() *Config {
	return globalConfig
}

// SetConfig 替换全局配置，主要供测试使用
func SetConfig(cfg *Config) {
	globalConfig = cfg
}
