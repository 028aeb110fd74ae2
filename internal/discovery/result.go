package discovery

import "github.com/blume-tech/jetson-app/internal/camera"

// ErrorKind classifies how a single probe attempt fell short. The
// empty value means the probe found and validated a camera.
type ErrorKind string

const (
	// ErrConnectFailed connection refused, unreachable, or timed out
	// during connect
	ErrConnectFailed ErrorKind = "connect-failed"
	// ErrTimeout connected but no response arrived within the probe
	// timeout
	ErrTimeout ErrorKind = "timeout"
	// ErrConnectionReset peer closed the connection mid exchange
	ErrConnectionReset ErrorKind = "connection-reset"
	// ErrClassificationFailed host responded but no signature matched
	ErrClassificationFailed ErrorKind = "classification-failed"
	// ErrValidationFailed signature matched but the stream could not
	// be confirmed
	ErrValidationFailed ErrorKind = "validation-failed"
	// ErrScanPrerequisite scan inputs could not produce a candidate
	// set at all
	ErrScanPrerequisite ErrorKind = "scan-prerequisite-failed"
)

// ProbeResult represents the outcome of a single probe attempt. Every
// probe produces exactly one result no matter how it exits.
type ProbeResult struct {
	Candidate    Candidate
	Reachable    bool
	Protocol     camera.Protocol
	Manufacturer string
	Validated    bool
	Error        ErrorKind
}
