package camera

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// Protocol identifies the streaming protocol a camera speaks
type Protocol string

const (
	ProtocolMJPEG   Protocol = "mjpeg"
	ProtocolRTSP    Protocol = "rtsp"
	ProtocolUnknown Protocol = "unknown"
)

// Camera represents a single validated camera endpoint on the network
type Camera struct {
	ID              string    `json:"id"`
	Host            string    `json:"ip"`
	Port            int       `json:"port"`
	Path            string    `json:"path"`
	URL             string    `json:"url"`
	Protocol        Protocol  `json:"type"`
	Manufacturer    string    `json:"manufacturer"`
	DiscoveredAt    time.Time `json:"discovered_at"`
	LastValidatedAt time.Time `json:"last_validated_at"`
}

// NewID returns the deterministic id for a host and port pair
func NewID(host string, port int) string {
	hashed := sha1.Sum([]byte(fmt.Sprintf("%s:%d", host, port)))
	return hex.EncodeToString(hashed[:])
}

// Addr returns the host:port address for this camera
func (c Camera) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
