package core

import (
	"errors"
	"time"

	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/config"
	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/blume-tech/jetson-app/internal/event"
	"github.com/blume-tech/jetson-app/internal/exception"
	"github.com/blume-tech/jetson-app/internal/telemetry"
	"github.com/blume-tech/jetson-app/internal/util"
)

// getSqliteDbConnection creates and returns a sqlite database connection
func getSqliteDbConnection(dbFile string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&config.ConfigModel{},
	)

	if err != nil {
		return nil, err
	}

	return db, nil
}

// getDefaultConfig creates and returns a default configuration. Scan
// ports and paths are the built in defaults plus anything the vendor
// signature table knows about.
func getDefaultConfig(defaultCIDR string) *config.Config {
	table := discovery.NewSignatureTable()

	ports := append([]int{}, discovery.DefaultPorts...)

	for _, port := range table.Ports() {
		if !util.SliceIncludes(ports, port) {
			ports = append(ports, port)
		}
	}

	paths := append([]string{}, discovery.DefaultPaths...)

	for _, path := range table.Paths() {
		if !util.SliceIncludes(paths, path) {
			paths = append(paths, path)
		}
	}

	return &config.Config{
		Name:    "default",
		Targets: []string{defaultCIDR},
		Scan: config.ScanConfig{
			Ports:          ports,
			Paths:          paths,
			Concurrency:    discovery.DefaultConcurrency,
			ProbeTimeoutMs: int(discovery.DefaultProbeTimeout / time.Millisecond),
			NmapPrescan:    true,
		},
		API: config.APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: config.TelemetryConfig{
			IntervalSeconds: 1,
			HistorySeconds:  600,
		},
	}
}

// CreateNewAppCore creates and returns a new instance of *core.Core
func CreateNewAppCore(defaultCIDR string) (*Core, error) {
	dbFile := viper.Get("database-file").(string)

	db, err := getSqliteDbConnection(dbFile)

	if err != nil {
		return nil, err
	}

	configRepo := config.NewSqliteRepo(db)
	configService := config.NewConfigService(configRepo)

	conf, err := configService.LastLoaded()

	if err != nil {
		if errors.Is(err, exception.ErrRecordNotFound) {
			conf = getDefaultConfig(defaultCIDR)
			conf, err = configService.Create(conf)

			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	eventManager := event.NewEventManager()
	registry := camera.NewRegistry()

	prober := discovery.NewNetProber(discovery.NewSignatureTable())
	prescanner := discovery.NewLivenessScanner()

	engine := discovery.NewCoordinator(
		prober,
		prescanner,
		registry,
		eventManager,
	)

	interval := conf.Telemetry.IntervalSeconds

	if interval <= 0 {
		interval = 1
	}

	maxHistory := conf.Telemetry.HistorySeconds / interval

	if maxHistory <= 0 {
		maxHistory = 1
	}

	monitor := telemetry.NewMonitor(
		telemetry.NewSystemSampler(),
		time.Duration(interval)*time.Second,
		maxHistory,
	)

	return New(
		conf,
		configService,
		engine,
		registry,
		monitor,
		eventManager,
	), nil
}
