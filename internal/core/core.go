package core

import (
	"io"
	"sync"
	"time"

	"github.com/imdario/mergo"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/config"
	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/blume-tech/jetson-app/internal/event"
	"github.com/blume-tech/jetson-app/internal/logger"
	"github.com/blume-tech/jetson-app/internal/telemetry"
)

// ScanOverrides are optional per request scan parameters. Zero valued
// fields fall back to the active configuration.
type ScanOverrides struct {
	Targets        []string `json:"targets"`
	Ports          []int    `json:"ports"`
	Paths          []string `json:"paths"`
	Concurrency    int      `json:"concurrency"`
	ProbeTimeoutMs int      `json:"probe_timeout_ms"`
}

// Core represents our core data structure
type Core struct {
	conf          config.Config
	configService config.Service
	engine        discovery.Service
	registry      *camera.Registry
	monitor       *telemetry.Monitor
	events        event.Manager
	startedAt     time.Time
	log           logger.Logger
	mux           sync.Mutex
}

// New returns new core module for given configuration
func New(
	conf *config.Config,
	configService config.Service,
	engine discovery.Service,
	registry *camera.Registry,
	monitor *telemetry.Monitor,
	events event.Manager,
) *Core {
	return &Core{
		conf:          *conf,
		configService: configService,
		engine:        engine,
		registry:      registry,
		monitor:       monitor,
		events:        events,
		startedAt:     time.Now(),
		log:           logger.New(),
		mux:           sync.Mutex{},
	}
}

// StartDaemon starts telemetry polling and kicks off the first scan
func (c *Core) StartDaemon() {
	c.monitor.Start()
	c.TriggerScan(ScanOverrides{})
}

// Stop halts the scan engine and telemetry polling
func (c *Core) Stop() {
	c.engine.Stop()
	c.monitor.Stop()
}

// StartedAt returns the time this core was created
func (c *Core) StartedAt() time.Time {
	return c.startedAt
}

// Uptime returns how long this core has been running
func (c *Core) Uptime() time.Duration {
	return time.Since(c.startedAt)
}

// Conf returns a copy of the active configuration
func (c *Core) Conf() config.Config {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.conf
}

// CreateConfig persists a new named configuration
func (c *Core) CreateConfig(conf config.Config) error {
	_, err := c.configService.Create(&conf)
	return err
}

// UpdateConfig persists conf and makes it the active configuration
func (c *Core) UpdateConfig(conf config.Config) error {
	updated, err := c.configService.Update(&conf)

	if err != nil {
		return err
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	c.conf = *updated

	return nil
}

// SetConfig makes the named configuration active
func (c *Core) SetConfig(name string) error {
	conf, err := c.configService.Get(name)

	if err != nil {
		return err
	}

	if err := c.configService.SetLastLoaded(name); err != nil {
		return err
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	c.conf = *conf

	return nil
}

// DeleteConfig removes the named configuration
func (c *Core) DeleteConfig(name string) error {
	return c.configService.Delete(name)
}

// GetConfigs returns all stored configurations
func (c *Core) GetConfigs() ([]*config.Config, error) {
	return c.configService.GetAll()
}

// Cameras returns the current registry snapshot
func (c *Core) Cameras() []camera.Camera {
	return c.registry.Snapshot()
}

// Camera returns a single camera by id
func (c *Core) Camera(id string) (*camera.Camera, bool) {
	return c.registry.Get(id)
}

// TriggerScan starts a scan built from the active configuration with
// any non zero override fields applied, superseding a running scan
func (c *Core) TriggerScan(overrides ScanOverrides) int64 {
	conf := c.Conf()

	base := ScanOverrides{
		Targets:        conf.Targets,
		Ports:          conf.Scan.Ports,
		Paths:          conf.Scan.Paths,
		Concurrency:    conf.Scan.Concurrency,
		ProbeTimeoutMs: conf.Scan.ProbeTimeoutMs,
	}

	if err := mergo.Merge(&overrides, base); err != nil {
		c.log.Error().Err(err).Msg("failed to merge scan overrides")
		overrides = base
	}

	return c.engine.StartScan(discovery.ScanRequest{
		Targets:      overrides.Targets,
		Ports:        overrides.Ports,
		Paths:        overrides.Paths,
		Concurrency:  overrides.Concurrency,
		ProbeTimeout: time.Duration(overrides.ProbeTimeoutMs) * time.Millisecond,
		Prescan:      conf.Scan.NmapPrescan,
	})
}

// ScanStatus returns the status of the current or most recent scan
func (c *Core) ScanStatus() discovery.ScanStatus {
	return c.engine.Status()
}

// CancelScan cancels the running scan if there is one
func (c *Core) CancelScan() {
	c.engine.Cancel()
}

// LatestSample returns the most recent telemetry sample
func (c *Core) LatestSample() (*telemetry.Sample, error) {
	return c.monitor.Latest()
}

// TelemetryCSV writes the telemetry history to w as csv
func (c *Core) TelemetryCSV(w io.Writer) error {
	return c.monitor.WriteCSV(w)
}

// DataPoints returns the number of telemetry samples held in history
func (c *Core) DataPoints() int {
	return c.monitor.DataPoints()
}

// RegisterEventListener registers a channel to receive all events
func (c *Core) RegisterEventListener(channel chan event.Event) int {
	return c.events.RegisterListener(event.AnyEventType, channel)
}

// RemoveEventListener removes a previously registered listener
func (c *Core) RemoveEventListener(id int) {
	c.events.RemoveListener(id)
}
