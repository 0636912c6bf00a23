package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "./config/config.yaml"

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type HTTP struct {
	Port           int           `yaml:"port"`           // 3000
	ReadTimeout    time.Duration `yaml:"readTimeout"`    // "10s"
	WriteTimeout   time.Duration `yaml:"writeTimeout"`   // "15s"
	IdleTimeout    time.Duration `yaml:"idleTimeout"`    // "60s"
	AllowedOrigins []string      `yaml:"allowedOrigins"` // ["*"]
}

func (h HTTP) Addr() string {
	return ":" + strconv.Itoa(h.Port)
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // room-broker
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Mongo struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Storage struct {
	Driver   string   `yaml:"driver"` // mongo|postgres
	Mongo    Mongo    `yaml:"mongo"`
	Postgres Postgres `yaml:"postgres"`
}

// Provider — внешний API видеоконференций (100ms).
// Secret одновременно подписывает токены участников и служит bearer-ом для API.
type Provider struct {
	BaseURL   string        `yaml:"baseURL"`
	AccessKey string        `yaml:"accessKey"`
	Secret    string        `yaml:"secret"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Token struct {
	TTL          time.Duration `yaml:"ttl"`
	AllowedRoles []string      `yaml:"allowedRoles"` // пусто — любая роль
}

type Presence struct {
	Broadcast    bool          `yaml:"broadcast"` // рассылать update всем подписчикам комнаты
	PingInterval time.Duration `yaml:"pingInterval"`
}

type Config struct {
	HTTP     HTTP     `yaml:"http"`
	Logging  Logging  `yaml:"logging"`
	Storage  Storage  `yaml:"storage"`
	Provider Provider `yaml:"provider"`
	Token    Token    `yaml:"token"`
	Presence Presence `yaml:"presence"`
}

// LoadConfig читает YAML (если есть), накладывает переменные окружения и дефолты.
// Пустой path — файл по умолчанию, его отсутствие не ошибка.
func LoadConfig(path string) (*Config, error) {
	return load(path, true)
}

// LoadSigningConfig — то же без проверки хранилища (CLI-команда token).
func LoadSigningConfig(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withStorage bool) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// только env
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.validate(withStorage); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	setIfEnv(&c.Provider.AccessKey, "API_KEY")
	setIfEnv(&c.Provider.Secret, "APP_SECRET")
	setIfEnv(&c.Storage.Mongo.URI, "MONGO_URI")
	setIfEnv(&c.Storage.Postgres.DSN, "DATABASE_URL")
	setIfEnv(&c.Storage.Driver, "STORAGE_DRIVER")
	setIfEnv(&c.Logging.Env, "APP_ENV")

	return nil
}

func setIfEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func (c *Config) setDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}

	if c.Logging.Service == "" {
		c.Logging.Service = "room-broker"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMongo
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "room_broker"
	}
	if c.Storage.Mongo.Timeout == 0 {
		c.Storage.Mongo.Timeout = 10 * time.Second
	}

	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "https://api.100ms.live/v2"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}

	if c.Token.TTL == 0 {
		c.Token.TTL = 24 * time.Hour
	}

	if c.Presence.PingInterval == 0 {
		c.Presence.PingInterval = 15 * time.Second
	}
}

func (c *Config) validate(withStorage bool) error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if c.Token.TTL < 0 {
		return errors.New("token.ttl must be > 0")
	}
	if !withStorage {
		return nil
	}

	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.Mongo.URI == "" {
			return errors.New("storage.mongo.uri (MONGO_URI) is required")
		}
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return errors.New("storage.postgres.dsn (DATABASE_URL) is required")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	return nil
}

// Warnings — то, без чего сервис стартует, но работает некорректно.
func (c *Config) Warnings() []string {
	var out []string
	if c.Provider.AccessKey == "" {
		out = append(out, "provider.accessKey (API_KEY) is empty: tokens will carry an empty access_key")
	}
	if c.Provider.Secret == "" {
		out = append(out, "provider.secret (APP_SECRET) is empty: token issuing and room creation will fail")
	}

	return out
}
