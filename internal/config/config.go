package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"DEBUG"`

	// StoreDriver selects the entity store backend: "memory" or "postgres".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	// SearchDriver selects the search index backend: "memory" or "sqlite".
	SearchDriver string `env:"SEARCH_DRIVER" envDefault:"memory"`
	SearchDBPath string `env:"SEARCH_DB_PATH" envDefault:"sourcing-search.db"`

	SyncQueueSize      int           `env:"SYNC_QUEUE_SIZE" envDefault:"256"`
	ExpiringSoonWindow time.Duration `env:"EXPIRING_SOON_WINDOW" envDefault:"72h"`

	PostgresConfig
}

func NewConfig() (*Config, error) {
	config := &Config{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, err
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://sourcing:sourcing@db:5432/sourcing?sslmode=disable"`
	AutoMigrateUp   bool   `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown bool   `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	MigrationsURL   string `env:"MIGRATIONS_URL" envDefault:"file://internal/store/db/migrations"`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	config := &PostgresConfig{}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}
