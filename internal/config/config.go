package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once in main and passed by pointer to every component that
// needs it. Components never read the environment themselves.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Invoice  InvoiceConfig  `mapstructure:"invoice"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug | release
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Development reports whether internal error detail may be surfaced to
// callers. Outside debug mode every 500 carries only its generic message.
func (s ServerConfig) Development() bool {
	return s.Mode == "debug"
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig points at the hosted auth provider that owns users and sessions.
type AuthConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig points at the object store holding quotation attachments.
type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// InvoiceConfig carries the renderer resources. Both fonts are mandatory at
// render time; the logo is optional.
type InvoiceConfig struct {
	FontRegular string `mapstructure:"font_regular"`
	FontBold    string `mapstructure:"font_bold"`
	LogoPath    string `mapstructure:"logo_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// Load reads configs/config.yaml if present, with environment variables
// taking precedence (SERVER_PORT, DATABASE_HOST, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file: environment variables only.
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("auth.timeout", 10*time.Second)

	v.SetDefault("storage.bucket", "cotizaciones")

	v.SetDefault("invoice.font_regular", "assets/fonts/Montserrat-Regular.ttf")
	v.SetDefault("invoice.font_bold", "assets/fonts/Montserrat-Bold.ttf")
	v.SetDefault("invoice.logo_path", "assets/logo.png")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func bindEnvVariables(v *viper.Viper) {
	keys := []string{
		"server.port", "server.mode",
		"database.host", "database.port", "database.user", "database.password",
		"database.dbname", "database.sslmode",
		"auth.base_url", "auth.api_key",
		"storage.endpoint", "storage.access_key", "storage.secret_key",
		"storage.bucket", "storage.use_ssl", "storage.public_base_url",
		"invoice.font_regular", "invoice.font_bold", "invoice.logo_path",
		"log.level", "log.format",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}
