// Package config содержит логику чтения конфигурации витрины магазина.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации витрины.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	// CatalogAddress задаёт внешний каталог товаров. Если пуст, товары читаются из хранилища.
	CatalogAddress string `env:"CATALOG_ADDRESS"`
	// RedisAddress задаёт Redis для блокировок между экземплярами. Если пуст, блокировки локальные.
	RedisAddress string        `env:"REDIS_ADDRESS"`
	LockTTL      time.Duration `env:"LOCK_TTL" envDefault:"10s"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения переменных окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envCatalogAddress := cfg.CatalogAddress
	envRedisAddress := cfg.RedisAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory store when empty")
	flag.StringVar(&cfg.CatalogAddress, "c", "", "product catalog address")
	flag.StringVar(&cfg.RedisAddress, "r", "", "redis address for per-user locks")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envCatalogAddress != "" {
		cfg.CatalogAddress = envCatalogAddress
	}
	if envRedisAddress != "" {
		cfg.RedisAddress = envRedisAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("LOCK_TTL must be positive, got %s", cfg.LockTTL)
	}

	return cfg, nil
}
