package config

import "time"

//go:generate mockgen -destination=../mock/config/mock_config.go -package=mock_config . Repo,Service

// ScanConfig represents the tunables for a discovery scan
type ScanConfig struct {
	Ports          []int    `json:"ports"`
	Paths          []string `json:"paths"`
	Concurrency    int      `json:"concurrency"`
	ProbeTimeoutMs int      `json:"probe_timeout_ms"`
	NmapPrescan    bool     `json:"nmap_prescan"`
}

// APIConfig represents the http api listen address
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// TelemetryConfig represents the system telemetry poller settings
type TelemetryConfig struct {
	IntervalSeconds int `json:"interval_seconds"`
	HistorySeconds  int `json:"history_seconds"`
}

// Config represents a stored scan profile for a network
type Config struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Targets   []string        `json:"targets"`
	Scan      ScanConfig      `json:"scan"`
	API       APIConfig       `json:"api"`
	Telemetry TelemetryConfig `json:"telemetry"`
	Loaded    time.Time       `json:"loaded"`
}

// Repo interface representing access to stored configs
type Repo interface {
	Get(name string) (*Config, error)
	GetAll() ([]*Config, error)
	Create(conf *Config) (*Config, error)
	Update(conf *Config) (*Config, error)
	Delete(name string) error
	SetLastLoaded(name string) error
	LastLoaded() (*Config, error)
}

// Service interface for manipulating configurations
type Service interface {
	Get(name string) (*Config, error)
	GetAll() ([]*Config, error)
	Create(conf *Config) (*Config, error)
	Update(conf *Config) (*Config, error)
	Delete(name string) error
	SetLastLoaded(name string) error
	LastLoaded() (*Config, error)
}
