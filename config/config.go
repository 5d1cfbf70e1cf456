package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

type GRPC struct {
	Addr string `yaml:"addr"`
}

type WS struct {
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
	PingEvery        time.Duration `yaml:"pingEvery"`
	WriteTimeout     time.Duration `yaml:"writeTimeout"`
	ReadLimit        int64         `yaml:"readLimit"`
	SendBuffer       int           `yaml:"sendBuffer"`
	FrameRate        float64       `yaml:"frameRate"`
	FrameBurst       int           `yaml:"frameBurst"`
}

type Rooms struct {
	MinParticipants int `yaml:"minParticipants"`
	MaxParticipants int `yaml:"maxParticipants"`
	IDRetries       int `yaml:"idRetries"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // flyprep
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	Level     string `yaml:"level"`     // debug|info|warn|error
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Mail struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	From      string        `yaml:"from"`
	Recipient string        `yaml:"recipient"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Enabled reports whether SMTP credentials are present.
func (m Mail) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"maxConns"`
	MinConns        int32         `yaml:"minConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime"`
}

type Interview struct {
	QuestionCount  int   `yaml:"questionCount"`
	MaxResumeBytes int64 `yaml:"maxResumeBytes"`
}

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	GRPC      GRPC      `yaml:"grpc"`
	WS        WS        `yaml:"ws"`
	Rooms     Rooms     `yaml:"rooms"`
	Logging   Logging   `yaml:"logging"`
	Mail      Mail      `yaml:"mail"`
	Postgres  Postgres  `yaml:"postgres"`
	Interview Interview `yaml:"interview"`
}

// envOverrides are deploy-time values that win over the YAML file.
type envOverrides struct {
	Port        string `envconfig:"PORT"`
	EmailUser   string `envconfig:"EMAIL_USER"`
	EmailPass   string `envconfig:"EMAIL_PASS"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AppEnv      string `envconfig:"APP_ENV"`
}

// LoadConfig reads .env (if any), the YAML file at CONFIG_PATH and the
// environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	cfg.apply(env)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) apply(env envOverrides) {
	if env.Port != "" {
		c.HTTP.Addr = ":" + strings.TrimPrefix(env.Port, ":")
	}
	if env.EmailUser != "" {
		c.Mail.Username = env.EmailUser
	}
	if env.EmailPass != "" {
		c.Mail.Password = env.EmailPass
	}
	if env.DatabaseURL != "" {
		c.Postgres.DSN = env.DatabaseURL
	}
	if env.AppEnv != "" {
		c.Logging.Env = env.AppEnv
	}
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.GRPC.Addr == "" {
		return errors.New("grpc.addr is required")
	}
	if c.Mail.Enabled() && c.Mail.Host == "" {
		return errors.New("mail.host is required when smtp credentials are set")
	}

	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:5173"}
	}

	if c.WS.HandshakeTimeout <= 0 {
		c.WS.HandshakeTimeout = 10 * time.Second
	}
	if c.WS.PingEvery <= 0 {
		c.WS.PingEvery = 15 * time.Second
	}
	if c.WS.WriteTimeout <= 0 {
		c.WS.WriteTimeout = 5 * time.Second
	}
	if c.WS.ReadLimit <= 0 {
		c.WS.ReadLimit = 1 << 20
	}
	if c.WS.SendBuffer <= 0 {
		c.WS.SendBuffer = 64
	}
	if c.WS.FrameRate <= 0 {
		c.WS.FrameRate = 50
	}
	if c.WS.FrameBurst <= 0 {
		c.WS.FrameBurst = 100
	}

	if c.Rooms.MinParticipants <= 0 {
		c.Rooms.MinParticipants = 2
	}
	if c.Rooms.MaxParticipants <= 0 {
		c.Rooms.MaxParticipants = 10
	}
	if c.Rooms.MinParticipants < 2 || c.Rooms.MaxParticipants < c.Rooms.MinParticipants {
		return fmt.Errorf("rooms: invalid participant bounds %d..%d", c.Rooms.MinParticipants, c.Rooms.MaxParticipants)
	}
	if c.Rooms.IDRetries <= 0 {
		c.Rooms.IDRetries = 5
	}

	if c.Logging.Service == "" {
		c.Logging.Service = "flyprep"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}

	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
	if c.Mail.Recipient == "" {
		c.Mail.Recipient = c.Mail.Username
	}
	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = 15 * time.Second
	}

	if c.Interview.QuestionCount <= 0 {
		c.Interview.QuestionCount = 3
	}
	if c.Interview.MaxResumeBytes <= 0 {
		c.Interview.MaxResumeBytes = 5 << 20
	}
	return nil
}
