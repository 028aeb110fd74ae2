package discovery

import (
	"fmt"
	"strings"

	"github.com/blume-tech/jetson-app/internal/util"
	"github.com/projectdiscovery/mapcidr"
)

// Default candidate space for ip cameras. Ports and paths cover the
// common embedded vendors plus the generic mjpeg streamer setups.
var (
	DefaultPorts = []int{80, 554, 8080, 8081, 8554, 1935, 443}

	DefaultPaths = []string{
		"/video",
		"/mjpeg",
		"/mjpg/video.mjpg",
		"/video.cgi",
		"/videostream.cgi",
		"/live",
		"/stream",
		"/cam/realmonitor?channel=1&subtype=0",
		"/axis-cgi/mjpg/video.cgi",
		"/cgi-bin/mjpg/video.cgi",
	}
)

// ports we expect to speak rtsp rather than http
var rtspPorts = []int{554, 8554, 1935, 8935}

// Candidate represents a single host, port, and path hypothesis that
// has not been probed yet
type Candidate struct {
	Host string
	Port int
	Path string
}

// Addr returns the host:port dial address for this candidate
func (c Candidate) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsRTSP returns true when this candidate should be probed with an
// rtsp DESCRIBE instead of an http GET
func (c Candidate) IsRTSP() bool {
	return util.SliceIncludes(rtspPorts, c.Port)
}

// URL returns the stream url this candidate would be reached at
func (c Candidate) URL() string {
	scheme := "http"

	if c.IsRTSP() {
		scheme = "rtsp"
	}

	return fmt.Sprintf("%s://%s:%d%s", scheme, c.Host, c.Port, c.Path)
}

// ExpandTargets expands cidr blocks into individual hosts. Plain ip or
// hostname entries pass through unchanged.
func ExpandTargets(targets []string) ([]string, error) {
	hosts := []string{}

	for _, target := range targets {
		if strings.Contains(target, "/") {
			ips, err := mapcidr.IPAddresses(target)

			if err != nil {
				return nil, err
			}

			hosts = append(hosts, ips...)
		} else {
			hosts = append(hosts, target)
		}
	}

	return hosts, nil
}

// Cross builds the full cross product of hosts, ports, and paths in
// deterministic order. Any empty input yields an empty candidate set.
func Cross(hosts []string, ports []int, paths []string) []Candidate {
	candidates := []Candidate{}

	for _, host := range hosts {
		for _, port := range ports {
			for _, path := range paths {
				candidates = append(candidates, Candidate{
					Host: host,
					Port: port,
					Path: path,
				})
			}
		}
	}

	return candidates
}

// GenerateCandidates expands targets and crosses them with ports and
// paths. Same inputs always produce the same candidates in the same
// order.
func GenerateCandidates(targets []string, ports []int, paths []string) ([]Candidate, error) {
	hosts, err := ExpandTargets(targets)

	if err != nil {
		return nil, err
	}

	return Cross(hosts, ports, paths), nil
}
