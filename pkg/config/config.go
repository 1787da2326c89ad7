package config

import (
	"time"
)

type DB struct {
	Url            string `envconfig:"URL"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
}

type Kafka struct {
	Brokers       string        `envconfig:"BROKERS" default:"localhost:9092"`
	GroupID       string        `envconfig:"GROUP_ID" default:"request-server-group"`
	RequestTopic  string        `envconfig:"REQUEST_TOPIC" default:"bank.transfer.request"`
	PushTopic     string        `envconfig:"PUSH_TOPIC" default:"bank.transfer.push"`
	MessageTTL    time.Duration `envconfig:"MESSAGE_TTL" default:"10s"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" default:"1s"`
}

type Crypto struct {
	Passphrase string `envconfig:"PASSPHRASE" required:"true"`
	Salt       string `envconfig:"SALT" required:"true"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[bankcore]"`
}

type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env    string  `envconfig:"APP_ENV" default:"development"`
	Server *Server `envconfig:"SERVER"`
	Log    *Log    `envconfig:"LOG"`
	DB     *DB     `envconfig:"DATABASE"`
	Kafka  *Kafka  `envconfig:"KAFKA"`
	Crypto *Crypto `envconfig:"CRYPTO"`
}
