package discovery

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../mock/discovery/mock_discovery.go -package=mock_discovery . Prober,Prescanner,Service

// Prober performs a single probe attempt against one candidate
type Prober interface {
	Probe(ctx context.Context, candidate Candidate, timeout time.Duration) *ProbeResult
}

// Prescanner narrows a host list to the hosts actually on the network
type Prescanner interface {
	Prescan(ctx context.Context, hosts []string) ([]string, error)
}

// Service interface for running camera discovery scans
type Service interface {
	StartScan(req ScanRequest) int64
	Status() ScanStatus
	Cancel()
	Stop()
}
