// Package config loads application configuration from the environment, with
// optional .env files for local development.
package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment. When an env file path is
// given and exists it is loaded first; missing files are not an error since
// deployed environments inject variables directly.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		if err := godotenv.Load(path); err != nil {
			logger.Debug("environment file not found", "path", path, "error", err)
			continue
		}
		logger.Info("environment loaded from file", "path", path)
		break
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	slog.Default().Info("app config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"kafka_brokers", cfg.Kafka.Brokers,
		"kafka_request_topic", cfg.Kafka.RequestTopic,
		"kafka_group_id", cfg.Kafka.GroupID,
		"message_ttl", cfg.Kafka.MessageTTL,
		"retry_attempts", cfg.Kafka.RetryAttempts,
		"retry_backoff", cfg.Kafka.RetryBackoff,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
