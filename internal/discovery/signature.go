package discovery

import (
	"strings"

	"github.com/blume-tech/jetson-app/internal/util"
)

// Signature represents one manufacturer's network fingerprint.
// Fingerprints are matched case insensitively against the first bytes
// of a probe response, including headers and auth realms.
type Signature struct {
	Name             string
	Ports            []int
	Paths            []string
	HTTPFingerprints []string
	RTSPFingerprints []string
}

// Table is an ordered, immutable set of signatures. Order matters:
// classification returns the first match, so vendor signatures come
// before the generic fallbacks.
type Table struct {
	signatures []Signature
}

// builtin signatures for the vendors we see most on embedded installs.
// The last two entries are generic protocol fallbacks and must stay
// last.
var builtinSignatures = []Signature{
	{
		Name:             "axis",
		Ports:            []int{80, 554},
		Paths:            []string{"/axis-cgi/mjpg/video.cgi", "/mjpg/video.mjpg"},
		HTTPFingerprints: []string{"server: axis", "axis-cgi", `realm="axis`},
		RTSPFingerprints: []string{"axis media", `realm="axis`},
	},
	{
		Name:             "hikvision",
		Ports:            []int{80, 554, 8000},
		Paths:            []string{"/stream", "/live"},
		HTTPFingerprints: []string{"hikvision", "app-webs", "dnvrs-webs"},
		RTSPFingerprints: []string{"hikvision", `realm="hik`},
	},
	{
		Name:             "dahua",
		Ports:            []int{80, 554},
		Paths:            []string{"/cam/realmonitor?channel=1&subtype=0"},
		HTTPFingerprints: []string{"dahua", `realm="logindialog`},
		RTSPFingerprints: []string{"dahua", `realm="login to`},
	},
	{
		Name:             "foscam",
		Ports:            []int{80, 88, 8080},
		Paths:            []string{"/videostream.cgi", "/video.cgi"},
		HTTPFingerprints: []string{"foscam", "netwave", "ipcam"},
		RTSPFingerprints: []string{"foscam"},
	},
	{
		Name:             "vivotek",
		Ports:            []int{80, 554},
		Paths:            []string{"/video.mjpg", "/video2.mjpg"},
		HTTPFingerprints: []string{"vivotek", "boa/"},
		RTSPFingerprints: []string{"vivotek"},
	},
	{
		Name:             "",
		Ports:            []int{80, 8080, 8081},
		Paths:            []string{"/mjpeg", "/video", "/stream"},
		HTTPFingerprints: []string{"multipart/x-mixed-replace", "mjpg-streamer", "motion/"},
	},
	{
		Name:             "",
		Ports:            []int{554, 8554},
		Paths:            []string{"/live", "/stream"},
		RTSPFingerprints: []string{"rtsp/1.0"},
	},
}

// NewSignatureTable returns the builtin signature table
func NewSignatureTable() *Table {
	return &Table{signatures: builtinSignatures}
}

// Signatures returns the table entries in authoritative order
func (t *Table) Signatures() []Signature {
	return t.signatures
}

// MatchHTTP returns the first signature whose http fingerprints match
// the given response prefix
func (t *Table) MatchHTTP(prefix string) (*Signature, bool) {
	return t.match(prefix, func(s *Signature) []string {
		return s.HTTPFingerprints
	})
}

// MatchRTSP returns the first signature whose rtsp fingerprints match
// the given response prefix
func (t *Table) MatchRTSP(prefix string) (*Signature, bool) {
	return t.match(prefix, func(s *Signature) []string {
		return s.RTSPFingerprints
	})
}

// Ports returns the union of all signature candidate ports in table
// order
func (t *Table) Ports() []int {
	ports := []int{}

	for _, s := range t.signatures {
		for _, p := range s.Ports {
			if !util.SliceIncludes(ports, p) {
				ports = append(ports, p)
			}
		}
	}

	return ports
}

// Paths returns the union of all signature candidate paths in table
// order
func (t *Table) Paths() []string {
	paths := []string{}

	for _, s := range t.signatures {
		for _, p := range s.Paths {
			if !util.SliceIncludes(paths, p) {
				paths = append(paths, p)
			}
		}
	}

	return paths
}

func (t *Table) match(prefix string, fingerprints func(*Signature) []string) (*Signature, bool) {
	lower := strings.ToLower(prefix)

	for i := range t.signatures {
		s := &t.signatures[i]

		for _, f := range fingerprints(s) {
			if strings.Contains(lower, f) {
				return s, true
			}
		}
	}

	return nil, false
}
