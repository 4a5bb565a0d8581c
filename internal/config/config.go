package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Order    OrderConfig
	Outbox   OutboxConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type LogConfig struct {
	Level string
}

type OrderConfig struct {
	TxTimeout time.Duration
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Workers      int
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "30s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "vendly")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "vendly")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DB_MIGRATIONS_DIR", "db/migrations")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ORDER_TX_TIMEOUT", "5s")
	viper.SetDefault("OUTBOX_POLL_INTERVAL", "500ms")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("OUTBOX_MAX_ATTEMPTS", 5)
	viper.SetDefault("OUTBOX_WORKERS", 4)

	serverReadTimeout, err := time.ParseDuration(viper.GetString("SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	serverWriteTimeout, err := time.ParseDuration(viper.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	serverIdleTimeout, err := time.ParseDuration(viper.GetString("SERVER_IDLE_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	orderTxTimeout, err := time.ParseDuration(viper.GetString("ORDER_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	outboxPollInterval, err := time.ParseDuration(viper.GetString("OUTBOX_POLL_INTERVAL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("SERVER_PORT"),
			ReadTimeout:  serverReadTimeout,
			WriteTimeout: serverWriteTimeout,
			IdleTimeout:  serverIdleTimeout,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			MigrationsDir:   viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Order: OrderConfig{
			TxTimeout: orderTxTimeout,
		},
		Outbox: OutboxConfig{
			PollInterval: outboxPollInterval,
			BatchSize:    viper.GetInt("OUTBOX_BATCH_SIZE"),
			MaxAttempts:  viper.GetInt("OUTBOX_MAX_ATTEMPTS"),
			Workers:      viper.GetInt("OUTBOX_WORKERS"),
		},
	}

	return cfg, nil
}
