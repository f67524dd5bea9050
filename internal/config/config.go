package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Database struct {
	DSN string `mapstructure:"dsn"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type Data struct {
	Dir string `mapstructure:"dir"`
}

type Import struct {
	BatchSize int `mapstructure:"batch_size"`
}

type Archive struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type Config struct {
	Database Database `mapstructure:"database"`
	HTTP     HTTP     `mapstructure:"http"`
	Data     Data     `mapstructure:"data"`
	Import   Import   `mapstructure:"import"`
	Archive  Archive  `mapstructure:"archive"`
	Log      Log      `mapstructure:"log"`
}

// Load reads configuration from an optional file plus STEAMCAT_* env vars.
// An empty path searches the working directory for steamcat.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.dsn", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("data.dir", "data")
	v.SetDefault("import.batch_size", 1000)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "steamcat-imports")
	v.SetDefault("archive.use_ssl", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)

	v.SetEnvPrefix("STEAMCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("steamcat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
