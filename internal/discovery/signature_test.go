package discovery_test

import (
	"testing"

	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/stretchr/testify/assert"
)

func TestSignatureTable(t *testing.T) {
	table := discovery.NewSignatureTable()

	t.Run("matches vendor http fingerprints case insensitively", func(st *testing.T) {
		response := "HTTP/1.1 401 Unauthorized\r\n" +
			"Server: App-webs/\r\n" +
			"WWW-Authenticate: Digest realm=\"Hikvision\"\r\n\r\n"

		sig, ok := table.MatchHTTP(response)

		assert.True(st, ok)
		assert.Equal(st, "hikvision", sig.Name)
	})

	t.Run("matches vendor rtsp fingerprints", func(st *testing.T) {
		response := "RTSP/1.0 401 Unauthorized\r\n" +
			"CSeq: 1\r\n" +
			"WWW-Authenticate: Digest realm=\"Login to 4K8C0492\"\r\n\r\n"

		sig, ok := table.MatchRTSP(response)

		assert.True(st, ok)
		assert.Equal(st, "dahua", sig.Name)
	})

	t.Run("vendor signatures win over generic fallbacks", func(st *testing.T) {
		response := "HTTP/1.1 200 OK\r\n" +
			"Server: Axis Network Camera\r\n" +
			"Content-Type: multipart/x-mixed-replace; boundary=myboundary\r\n\r\n"

		sig, ok := table.MatchHTTP(response)

		assert.True(st, ok)
		assert.Equal(st, "axis", sig.Name)
	})

	t.Run("generic mjpeg fallback matches unbranded streamers", func(st *testing.T) {
		response := "HTTP/1.1 200 OK\r\n" +
			"Content-Type: multipart/x-mixed-replace; boundary=frame\r\n\r\n"

		sig, ok := table.MatchHTTP(response)

		assert.True(st, ok)
		assert.Equal(st, "", sig.Name)
	})

	t.Run("generic rtsp fallback matches any rtsp speaker", func(st *testing.T) {
		response := "RTSP/1.0 200 OK\r\nCSeq: 1\r\n\r\n"

		sig, ok := table.MatchRTSP(response)

		assert.True(st, ok)
		assert.Equal(st, "", sig.Name)
	})

	t.Run("returns no match for plain web servers", func(st *testing.T) {
		response := "HTTP/1.1 200 OK\r\n" +
			"Server: nginx/1.18.0\r\n" +
			"Content-Type: text/html\r\n\r\n<html></html>"

		_, ok := table.MatchHTTP(response)

		assert.False(st, ok)
	})

	t.Run("match is deterministic for identical input", func(st *testing.T) {
		response := "HTTP/1.1 200 OK\r\nServer: Dahua Rtsp Server\r\n\r\n"

		first, ok := table.MatchHTTP(response)

		assert.True(st, ok)

		second, ok := table.MatchHTTP(response)

		assert.True(st, ok)
		assert.Equal(st, first.Name, second.Name)
	})

	t.Run("exposes candidate port and path unions in table order", func(st *testing.T) {
		ports := table.Ports()
		paths := table.Paths()

		assert.NotEmpty(st, ports)
		assert.NotEmpty(st, paths)

		seenPorts := map[int]int{}

		for _, p := range ports {
			seenPorts[p]++
		}

		for p, count := range seenPorts {
			assert.Equal(st, 1, count, "port %d appears more than once", p)
		}
	})
}
