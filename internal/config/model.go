package config

import (
	"time"

	"gorm.io/datatypes"
)

// ScanConfigModel is the database representation of ScanConfig
type ScanConfigModel struct {
	Ports          datatypes.JSON
	Paths          datatypes.JSON
	Concurrency    int
	ProbeTimeoutMs int
	NmapPrescan    bool
}

// APIConfigModel is the database representation of APIConfig
type APIConfigModel struct {
	Host string
	Port int
}

// TelemetryConfigModel is the database representation of TelemetryConfig
type TelemetryConfigModel struct {
	IntervalSeconds int
	HistorySeconds  int
}

// ConfigModel is the database representation of a stored scan profile
type ConfigModel struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	Targets   datatypes.JSON
	Scan      ScanConfigModel      `gorm:"embedded;embeddedPrefix:scan_"`
	API       APIConfigModel       `gorm:"embedded;embeddedPrefix:api_"`
	Telemetry TelemetryConfigModel `gorm:"embedded;embeddedPrefix:telemetry_"`
	Loaded    time.Time
}
