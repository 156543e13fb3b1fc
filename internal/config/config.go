package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Env         string
	AppPort     string
	DBDriver    string // sqlite, postgres or memory
	DatabaseDSN string
	RabbitMQURL string // empty disables user events
	BcryptCost  int
	LogLevel    string
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	return FromViper(viper.GetViper())
}

// FromViper fills a Config from v after registering the defaults on it.
func FromViper(v *viper.Viper) Config {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "users.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	return Config{
		Env:         v.GetString("APP_ENV"),
		AppPort:     v.GetString("APP_PORT"),
		DBDriver:    v.GetString("DB_DRIVER"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
}
