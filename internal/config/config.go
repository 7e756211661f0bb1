package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig `yaml:"database"`
	HTTP        HTTPConfig     `yaml:"http"`
	Engine      EngineConfig   `yaml:"engine"`
	Environment string         `yaml:"environment" default:"local"` // local, dev, prod
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"blackhole"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// HTTPConfig holds HTTP API server configuration
type HTTPConfig struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"8080"`
}

// EngineConfig holds the chat engine tunables
type EngineConfig struct {
	Communities            []string `yaml:"communities"`                         // Campus communities served by this instance
	SweepCron              string   `yaml:"sweep_cron" default:"*/5 * * * *"`    // Cron schedule for lifecycle sweeps
	GroupInactivityMinutes int      `yaml:"group_inactivity_minutes" default:"120"` // Hashtag rooms idle longer than this are reaped
	ConfessionDailyLimit   int      `yaml:"confession_daily_limit" default:"2"`  // Confessions per user per boundary day
	FlagThreshold          int      `yaml:"flag_threshold" default:"5"`          // Distinct reporters needed to auto-remove a message
}

// GroupInactivityTimeout returns the idle reap window as a duration.
func (e *EngineConfig) GroupInactivityTimeout() time.Duration {
	return time.Duration(e.GroupInactivityMinutes) * time.Minute
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}
