package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	app_info "github.com/blume-tech/jetson-app/internal/app-info"
	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/logger"
)

const (
	// how many bytes of a response we classify against
	classifyWindow = 4096
	// how many bytes we search for stream markers during validation
	validateWindow = 64 * 1024
)

var boundaryPattern = regexp.MustCompile(`(?i)boundary="?([^"\s;]+)"?`)

// NetProber implements the Prober interface using raw tcp probes. A
// single connection serves the whole attempt: connect, request,
// classify, validate, all under one deadline.
type NetProber struct {
	table *Table
	log   logger.Logger
}

// NewNetProber returns a new instance of NetProber
func NewNetProber(table *Table) *NetProber {
	return &NetProber{
		table: table,
		log:   logger.New(),
	}
}

// Probe runs one attempt against a candidate. It always produces a
// result and never runs longer than the given timeout.
func (p *NetProber) Probe(ctx context.Context, c Candidate, timeout time.Duration) *ProbeResult {
	result := &ProbeResult{
		Candidate: c,
		Protocol:  camera.ProtocolUnknown,
	}

	deadline := time.Now().Add(timeout)

	dialer := net.Dialer{Deadline: deadline}

	conn, err := dialer.DialContext(ctx, "tcp", c.Addr())

	if err != nil {
		result.Error = ErrConnectFailed
		return result
	}

	defer conn.Close()

	result.Reachable = true

	// the whole exchange shares one deadline
	if err := conn.SetDeadline(deadline); err != nil {
		result.Error = ErrConnectionReset
		return result
	}

	if _, err := conn.Write([]byte(p.request(c))); err != nil {
		result.Error = classifyIOError(err)
		return result
	}

	response, readErr := readUntil(conn, classifyWindow, func(buf []byte) bool {
		return bytes.Contains(buf, []byte("\r\n\r\n"))
	})

	if len(response) == 0 {
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			result.Error = classifyIOError(readErr)
			return result
		}

		// accepted then closed cleanly without a byte: reachable but
		// nothing to classify
		return result
	}

	var sig *Signature
	var matched bool

	if c.IsRTSP() {
		sig, matched = p.table.MatchRTSP(string(response))
	} else {
		sig, matched = p.table.MatchHTTP(string(response))
	}

	if !matched {
		result.Error = ErrClassificationFailed
		return result
	}

	result.Manufacturer = sig.Name

	if c.IsRTSP() {
		result.Protocol = camera.ProtocolRTSP
		result.Validated = validateRTSP(conn, response)
	} else {
		result.Protocol = camera.ProtocolMJPEG
		result.Validated = validateMJPEG(conn, response)
	}

	if !result.Validated {
		result.Error = ErrValidationFailed
		return result
	}

	p.log.Debug().
		Str("url", c.URL()).
		Str("manufacturer", sig.Name).
		Msg("validated camera stream")

	return result
}

// request builds the raw probe request for a candidate
func (p *NetProber) request(c Candidate) string {
	userAgent := fmt.Sprintf("%s/%s", app_info.NAME, app_info.VERSION)

	if c.IsRTSP() {
		return fmt.Sprintf(
			"DESCRIBE %s RTSP/1.0\r\nCSeq: 1\r\nUser-Agent: %s\r\nAccept: application/sdp\r\n\r\n",
			c.URL(),
			userAgent,
		)
	}

	return fmt.Sprintf(
		"GET %s HTTP/1.1\r\nHost: %s\r\nUser-Agent: %s\r\nAccept: */*\r\nConnection: close\r\n\r\n",
		c.Path,
		c.Addr(),
		userAgent,
	)
}

// errors after a successful connect are either the deadline firing or
// the peer tearing the connection down
func classifyIOError(err error) ErrorKind {
	var netErr net.Error

	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	return ErrConnectionReset
}

// readUntil reads from conn until stop returns true for the
// accumulated bytes, max bytes arrive, or the read fails
func readUntil(conn net.Conn, max int, stop func([]byte) bool) ([]byte, error) {
	buf := []byte{}
	chunk := make([]byte, 1024)

	for len(buf) < max && !stop(buf) {
		n, err := conn.Read(chunk)

		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}

		if err != nil {
			return buf, err
		}
	}

	return buf, nil
}

// validateMJPEG confirms an mjpeg stream by finding a frame boundary
// marker in the response body
func validateMJPEG(conn net.Conn, response []byte) bool {
	marker := []byte("\r\n--")

	if boundary := mjpegBoundary(string(response)); boundary != "" {
		marker = []byte("--" + boundary)
	}

	found := func(buf []byte) bool {
		idx := bytes.Index(buf, []byte("\r\n\r\n"))

		return idx >= 0 && bytes.Contains(buf[idx+4:], marker)
	}

	buf, _ := readFrom(conn, response, validateWindow, found)

	return found(buf)
}

// validateRTSP confirms an rtsp stream by requiring a 200 response
// carrying an sdp media description
func validateRTSP(conn net.Conn, response []byte) bool {
	found := func(buf []byte) bool {
		return bytes.HasPrefix(buf, []byte("RTSP/1.0 200")) &&
			bytes.Contains(buf, []byte("\nm="))
	}

	buf, _ := readFrom(conn, response, validateWindow, found)

	return found(buf)
}

// readFrom continues reading into an existing buffer until stop
// returns true, max bytes arrive, or the read fails
func readFrom(conn net.Conn, initial []byte, max int, stop func([]byte) bool) ([]byte, error) {
	buf := initial
	chunk := make([]byte, 4096)

	for len(buf) < max && !stop(buf) {
		n, err := conn.Read(chunk)

		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}

		if err != nil {
			return buf, err
		}
	}

	return buf, nil
}

// mjpegBoundary extracts the multipart boundary token from a response
// header block
func mjpegBoundary(response string) string {
	m := boundaryPattern.FindStringSubmatch(response)

	if len(m) < 2 {
		return ""
	}

	return strings.TrimLeft(m[1], "-")
}
