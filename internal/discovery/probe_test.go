package discovery_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/stretchr/testify/assert"
)

// startFixture runs a raw tcp server on an ephemeral port and hands
// every accepted connection to handler
func startFixture(t *testing.T, handler func(conn net.Conn)) (string, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		t.Logf("failed to start fixture listener: %s", err.Error())
		t.FailNow()
	}

	t.Cleanup(func() {
		listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()

			if err != nil {
				return
			}

			go handler(conn)
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)

	return "127.0.0.1", addr.Port
}

// startRTSPFixture is like startFixture but binds one of the
// unprivileged rtsp ports so candidates are probed with DESCRIBE
func startRTSPFixture(t *testing.T, handler func(conn net.Conn)) (string, int) {
	t.Helper()

	for _, port := range []int{8554, 1935, 8935} {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))

		if err != nil {
			continue
		}

		t.Cleanup(func() {
			listener.Close()
		})

		go func() {
			for {
				conn, err := listener.Accept()

				if err != nil {
					return
				}

				go handler(conn)
			}
		}()

		return "127.0.0.1", port
	}

	t.Logf("no rtsp test port available")
	t.FailNow()

	return "", 0
}

// readRequest pulls the probe request off the wire so fixture writes
// never race the client's send
func readRequest(conn net.Conn) {
	buf := make([]byte, 1024)
	conn.Read(buf)
}

func TestNetProber(t *testing.T) {
	prober := discovery.NewNetProber(discovery.NewSignatureTable())

	t.Run("classifies connection refused as connect failed", func(st *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")

		assert.NoError(st, err)

		port := listener.Addr().(*net.TCPAddr).Port

		listener.Close()

		candidate := discovery.Candidate{Host: "127.0.0.1", Port: port, Path: "/mjpeg"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.False(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, discovery.ErrConnectFailed, result.Error)
		assert.Equal(st, camera.ProtocolUnknown, result.Protocol)
	})

	t.Run("returns timeout when server never responds", func(st *testing.T) {
		host, port := startFixture(st, func(conn net.Conn) {
			readRequest(conn)
			time.Sleep(2 * time.Second)
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/mjpeg"}

		timeout := 300 * time.Millisecond
		start := time.Now()

		result := prober.Probe(context.Background(), candidate, timeout)

		elapsed := time.Since(start)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, discovery.ErrTimeout, result.Error)
		assert.Less(st, elapsed, timeout+500*time.Millisecond)
	})

	t.Run("treats clean zero byte close as reachable with unknown protocol", func(st *testing.T) {
		host, port := startFixture(st, func(conn net.Conn) {
			readRequest(conn)
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/mjpeg"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, discovery.ErrorKind(""), result.Error)
		assert.Equal(st, camera.ProtocolUnknown, result.Protocol)
	})

	t.Run("classifies mid exchange reset", func(st *testing.T) {
		host, port := startFixture(st, func(conn net.Conn) {
			readRequest(conn)

			if tcpConn, ok := conn.(*net.TCPConn); ok {
				tcpConn.SetLinger(0)
			}

			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/mjpeg"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, discovery.ErrConnectionReset, result.Error)
	})

	t.Run("validates mjpeg stream and identifies manufacturer", func(st *testing.T) {
		host, port := startFixture(st, func(conn net.Conn) {
			readRequest(conn)

			response := "HTTP/1.1 200 OK\r\n" +
				"Server: Axis Network Camera\r\n" +
				"Content-Type: multipart/x-mixed-replace; boundary=myboundary\r\n" +
				"\r\n" +
				"--myboundary\r\n" +
				"Content-Type: image/jpeg\r\n" +
				"Content-Length: 4\r\n" +
				"\r\n" +
				"xxxx\r\n" +
				"--myboundary\r\n"

			conn.Write([]byte(response))
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/mjpeg"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.True(st, result.Validated)
		assert.Equal(st, camera.ProtocolMJPEG, result.Protocol)
		assert.Equal(st, "axis", result.Manufacturer)
		assert.Equal(st, discovery.ErrorKind(""), result.Error)
	})

	t.Run("fails validation when fingerprint matches but no stream arrives", func(st *testing.T) {
		host, port := startFixture(st, func(conn net.Conn) {
			readRequest(conn)

			response := "HTTP/1.1 200 OK\r\n" +
				"Server: App-webs/\r\n" +
				"Content-Type: text/html\r\n" +
				"\r\n" +
				"<html>device admin page</html>"

			conn.Write([]byte(response))
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/stream"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, camera.ProtocolMJPEG, result.Protocol)
		assert.Equal(st, "hikvision", result.Manufacturer)
		assert.Equal(st, discovery.ErrValidationFailed, result.Error)
	})

	t.Run("fails classification for plain web servers", func(st *testing.T) {
		host, port := startFixture(st, func(conn net.Conn) {
			readRequest(conn)

			response := "HTTP/1.1 200 OK\r\n" +
				"Server: nginx/1.18.0\r\n" +
				"Content-Type: text/html\r\n" +
				"\r\n" +
				"<html>not a camera</html>"

			conn.Write([]byte(response))
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/video"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, camera.ProtocolUnknown, result.Protocol)
		assert.Equal(st, discovery.ErrClassificationFailed, result.Error)
	})

	t.Run("validates rtsp describe carrying sdp", func(st *testing.T) {
		host, port := startRTSPFixture(st, func(conn net.Conn) {
			readRequest(conn)

			sdp := "v=0\r\n" +
				"o=- 0 0 IN IP4 127.0.0.1\r\n" +
				"s=stream\r\n" +
				"m=video 0 RTP/AVP 96\r\n"

			response := fmt.Sprintf(
				"RTSP/1.0 200 OK\r\nCSeq: 1\r\nContent-Type: application/sdp\r\nContent-Length: %d\r\n\r\n%s",
				len(sdp),
				sdp,
			)

			conn.Write([]byte(response))
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/live"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.True(st, result.Validated)
		assert.Equal(st, camera.ProtocolRTSP, result.Protocol)
		assert.Equal(st, discovery.ErrorKind(""), result.Error)
	})

	t.Run("classifies rtsp 401 but fails validation", func(st *testing.T) {
		host, port := startRTSPFixture(st, func(conn net.Conn) {
			readRequest(conn)

			response := "RTSP/1.0 401 Unauthorized\r\n" +
				"CSeq: 1\r\n" +
				"WWW-Authenticate: Digest realm=\"Hikvision\"\r\n" +
				"\r\n"

			conn.Write([]byte(response))
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/live"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, camera.ProtocolRTSP, result.Protocol)
		assert.Equal(st, "hikvision", result.Manufacturer)
		assert.Equal(st, discovery.ErrValidationFailed, result.Error)
	})

	t.Run("fails classification for malformed rtsp responses", func(st *testing.T) {
		host, port := startRTSPFixture(st, func(conn net.Conn) {
			readRequest(conn)
			conn.Write([]byte("ERR not today\r\n\r\n"))
			conn.Close()
		})

		candidate := discovery.Candidate{Host: host, Port: port, Path: "/live"}

		result := prober.Probe(context.Background(), candidate, time.Second)

		assert.True(st, result.Reachable)
		assert.False(st, result.Validated)
		assert.Equal(st, camera.ProtocolUnknown, result.Protocol)
		assert.Equal(st, discovery.ErrClassificationFailed, result.Error)
	})
}
