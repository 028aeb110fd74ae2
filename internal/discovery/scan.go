package discovery

import "time"

const (
	// DefaultConcurrency bounds simultaneous probes per scan
	DefaultConcurrency = 50
	// DefaultProbeTimeout bounds a single probe attempt
	DefaultProbeTimeout = 2 * time.Second
)

// ScanState represents the lifecycle state of a scan job
type ScanState string

const (
	ScanIdle      ScanState = "idle"
	ScanRunning   ScanState = "running"
	ScanCompleted ScanState = "completed"
	ScanCancelled ScanState = "cancelled"
	ScanFailed    ScanState = "failed"
)

// Terminal returns true once a scan can no longer change state
func (s ScanState) Terminal() bool {
	return s == ScanCompleted || s == ScanCancelled || s == ScanFailed
}

// ScanRequest represents the inputs for a single scan
type ScanRequest struct {
	Targets      []string
	Ports        []int
	Paths        []string
	Concurrency  int
	ProbeTimeout time.Duration
	Prescan      bool
}

// withDefaults fills any unset request fields
func (r ScanRequest) withDefaults() ScanRequest {
	if len(r.Ports) == 0 {
		r.Ports = DefaultPorts
	}

	if len(r.Paths) == 0 {
		r.Paths = DefaultPaths
	}

	if r.Concurrency <= 0 {
		r.Concurrency = DefaultConcurrency
	}

	if r.ProbeTimeout <= 0 {
		r.ProbeTimeout = DefaultProbeTimeout
	}

	return r
}

// ScanStatus is a point in time snapshot of the current scan job
type ScanStatus struct {
	ID                int64     `json:"scan_id"`
	State             ScanState `json:"state"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at,omitempty"`
	CandidatesTotal   int       `json:"candidates_total"`
	CandidatesChecked int       `json:"candidates_checked"`
	CamerasFound      int       `json:"cameras_found"`
}
