package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

type Config struct {
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	Currency        string
	ColumnOverrides map[ledger.Role]string
	DetectorTimeout time.Duration
	MaxCycles       int
	MaxCycleLength  int
	Concurrency     int
	Workers         int
	HTTPPort        string
	NatsURL         string
	NatsSubject     string
}

var columnEnv = map[ledger.Role]string{
	ledger.RoleID:       "FORENSICS_COLUMN_ID",
	ledger.RoleDate:     "FORENSICS_COLUMN_DATE",
	ledger.RoleAmount:   "FORENSICS_COLUMN_AMOUNT",
	ledger.RoleEntity:   "FORENSICS_COLUMN_ENTITY",
	ledger.RoleSender:   "FORENSICS_COLUMN_SENDER",
	ledger.RoleReceiver: "FORENSICS_COLUMN_RECEIVER",
	ledger.RoleName:     "FORENSICS_COLUMN_NAME",
}

// ProcessEnvironmentVariables loads an optional .env file and then applies
// environment overrides on top of the defaults.
func ProcessEnvironmentVariables() (*Config, error) {
	for _, path := range []string{".env", "../.env"} {
		if err := godotenv.Load(path); err == nil {
			logrus.WithField("path", path).Debug("config.ProcessEnvironmentVariables.dotenv")
			break
		}
	}

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",

		Currency:        "IDR",
		ColumnOverrides: make(map[ledger.Role]string),
		DetectorTimeout: 5 * time.Minute,
		MaxCycles:       10000,
		MaxCycleLength:  0,
		Concurrency:     0,
		Workers:         2,
		HTTPPort:        "9446",
		NatsSubject:     "forensics.reports",
	}

	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")

	setString(&env.Currency, "FORENSICS_CURRENCY")
	setString(&env.HTTPPort, "FORENSICS_HTTP_PORT")
	setString(&env.NatsURL, "NATS_URL")
	setString(&env.NatsSubject, "NATS_SUBJECT")

	for role, key := range columnEnv {
		if value := os.Getenv(key); len(value) != 0 {
			env.ColumnOverrides[role] = value
		}
	}

	if value := os.Getenv("FORENSICS_DETECTOR_TIMEOUT"); len(value) != 0 {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid FORENSICS_DETECTOR_TIMEOUT: %w", err)
		}
		env.DetectorTimeout = timeout
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"FORENSICS_MAX_CYCLES", &env.MaxCycles},
		{"FORENSICS_MAX_CYCLE_LENGTH", &env.MaxCycleLength},
		{"FORENSICS_CONCURRENCY", &env.Concurrency},
		{"FORENSICS_WORKERS", &env.Workers},
	}
	for _, item := range ints {
		value := os.Getenv(item.key)
		if len(value) == 0 {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", item.key, err)
		}
		*item.target = n
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}

	return &env, nil
}

// Validate rejects budgets that cannot work. Zero means unbounded for the
// cycle limits and the concurrency.
func (c *Config) Validate() error {
	if c.DetectorTimeout < 0 {
		return errors.New("FORENSICS_DETECTOR_TIMEOUT must not be negative")
	}
	if c.MaxCycles < 0 || c.MaxCycleLength < 0 {
		return errors.New("FORENSICS_MAX_CYCLES and FORENSICS_MAX_CYCLE_LENGTH must not be negative")
	}
	if c.Concurrency < 0 {
		return errors.New("FORENSICS_CONCURRENCY must not be negative")
	}
	if c.Workers < 1 {
		return errors.New("FORENSICS_WORKERS must be at least 1")
	}
	if c.Currency == "" {
		return errors.New("FORENSICS_CURRENCY must not be empty")
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.PostgresUsername + ":" +
		c.PostgresPassword + "@" + c.PostgresAddress + ":" +
		c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

// Mapping returns the default column mapping with the configured overrides.
func (c *Config) Mapping() ledger.Mapping {
	return ledger.DefaultMapping().WithOverrides(c.ColumnOverrides)
}

func setString(target *string, key string) {
	if value := os.Getenv(key); len(value) != 0 {
		*target = value
	}
}
