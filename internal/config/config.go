package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NFSE_SERVER_ADDRESS
const EnvPrefix = "NFSE"

type Configuration struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Batch   BatchConfig   `mapstructure:"batch" validate:"required"`
	Logging LoggingConfig `mapstructure:"logging" validate:"required"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	Debug        bool          `mapstructure:"debug"`
}

type BatchConfig struct {
	Concurrency int  `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	Partial     bool `mapstructure:"partial"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Encoding string `mapstructure:"encoding" validate:"oneof=json console"`
}

// Options selects the files Load reads. Empty fields use the search paths.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load reads defaults, then config.yaml, then the .env file, then the
// environment. Later sources win. Missing files are not an error unless
// ConfigFile or EnvFile names one explicitly.
func Load(opts Options) (*Configuration, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nfse-reader")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetDefaultConfig returns the configuration used when nothing is set
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Batch: BatchConfig{
			Concurrency: 1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.debug", d.Server.Debug)
	v.SetDefault("batch.concurrency", d.Batch.Concurrency)
	v.SetDefault("batch.partial", d.Batch.Partial)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
}
