/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables, with an
 * optional .env file for local development.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the directdebit-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	InternalAPIKey     string `mapstructure:"INTERNAL_API_KEY"`
	NotifyJobSchedule  string `mapstructure:"NOTIFY_JOB_SCHEDULE"`
	CollectJobSchedule string `mapstructure:"COLLECT_JOB_SCHEDULE"`
	NotifyDaysAhead    int    `mapstructure:"NOTIFY_DAYS_AHEAD"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("NOTIFY_JOB_SCHEDULE", "0 6 * * *")  // At 06:00 every day.
	viper.SetDefault("COLLECT_JOB_SCHEDULE", "0 7 * * *") // At 07:00 every day.
	viper.SetDefault("NOTIFY_DAYS_AHEAD", 10)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("NOTIFY_JOB_SCHEDULE")
	_ = viper.BindEnv("COLLECT_JOB_SCHEDULE")
	_ = viper.BindEnv("NOTIFY_DAYS_AHEAD")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.InternalAPIKey = strings.TrimSpace(config.InternalAPIKey)

	if config.NotifyDaysAhead <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive notify window configured; using default\" days_ahead=%d", config.NotifyDaysAhead)
		config.NotifyDaysAhead = 10
	}

	return
}
