// Package config содержит логику чтения конфигурации платёжного сервиса.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации платёжного сервиса.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	DatabaseURI    string        `env:"DATABASE_URI"`
	TronAPIAddress string        `env:"TRON_API_ADDRESS"`
	DepositAddress string        `env:"USDT_DEPOSIT_ADDRESS"`
	TokenContract  string        `env:"USDT_CONTRACT_ADDRESS"`
	MinimumDeposit float64       `env:"MINIMUM_DEPOSIT"`
	TokenDecimals  int           `env:"TOKEN_DECIMALS"`
	SessionTTL     time.Duration `env:"SESSION_TTL"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"`
	AuthSecret     string        `env:"AUTH_SECRET"`
}

// Defaults политики депозита. Адрес контракта — USDT TRC20 в основной сети.
const (
	DefaultTronAPIAddress = "https://api.trongrid.io"
	DefaultTokenContract  = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	DefaultMinimumDeposit = 100
	DefaultTokenDecimals  = 6
	DefaultSessionTTL     = 59 * time.Minute
	DefaultSweepInterval  = 5 * time.Minute
)

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения. Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI (in-memory storage when empty)")
	flag.StringVar(&cfg.TronAPIAddress, "t", DefaultTronAPIAddress, "TRON node API address")
	flag.StringVar(&cfg.DepositAddress, "deposit-address", "", "USDT TRC20 deposit address")
	flag.StringVar(&cfg.TokenContract, "token-contract", DefaultTokenContract, "USDT token contract address")
	flag.Float64Var(&cfg.MinimumDeposit, "min-deposit", DefaultMinimumDeposit, "minimum deposit amount in USDT")
	flag.IntVar(&cfg.TokenDecimals, "token-decimals", DefaultTokenDecimals, "token decimal places")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", DefaultSessionTTL, "deposit session time to live")
	flag.DurationVar(&cfg.SweepInterval, "sweep-interval", DefaultSweepInterval, "expired session sweep interval")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", "", "secret key for auth cookies")

	flag.Parse()

	// env.Parse изменяет только поля, для которых переменная окружения задана,
	// поэтому значения флагов остаются для всего незаданного.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DepositAddress == "" {
		return nil, fmt.Errorf("deposit address is required")
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}
