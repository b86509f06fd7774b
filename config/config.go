package config

import (
	"fmt"

	"github.com/spf13/viper"
)

/* Config holds process-wide settings for the gateway and worker binaries.
 * Values come from the environment, optionally seeded from a .env file.
 */

type Config struct {
	Port          string `mapstructure:"PORT"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	ProvidersFile string `mapstructure:"PROVIDERS_FILE"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	// FailedListLimit caps the number of failed webhooks returned by the
	// inspection endpoint in a single page.
	FailedListLimit int `mapstructure:"FAILED_LIST_LIMIT"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SQLITE_PATH", "leadgate.db")
	viper.SetDefault("PROVIDERS_FILE", "providers.yaml")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("FAILED_LIST_LIMIT", 100)

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env file is fine, the environment still applies
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}
