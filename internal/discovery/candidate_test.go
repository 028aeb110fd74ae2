package discovery_test

import (
	"testing"

	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/stretchr/testify/assert"
)

func TestGenerateCandidates(t *testing.T) {
	t.Run("produces full cross product in deterministic order", func(st *testing.T) {
		targets := []string{"10.0.0.5", "10.0.0.6"}
		ports := []int{80, 554}
		paths := []string{"/mjpeg", "/stream"}

		candidates, err := discovery.GenerateCandidates(targets, ports, paths)

		assert.NoError(st, err)
		assert.Equal(st, 8, len(candidates))

		assert.Equal(st, discovery.Candidate{
			Host: "10.0.0.5",
			Port: 80,
			Path: "/mjpeg",
		}, candidates[0])

		assert.Equal(st, discovery.Candidate{
			Host: "10.0.0.6",
			Port: 554,
			Path: "/stream",
		}, candidates[7])
	})

	t.Run("same inputs produce identical sequences", func(st *testing.T) {
		targets := []string{"192.168.1.0/30"}
		ports := []int{80, 8080}
		paths := []string{"/video"}

		first, err := discovery.GenerateCandidates(targets, ports, paths)

		assert.NoError(st, err)

		second, err := discovery.GenerateCandidates(targets, ports, paths)

		assert.NoError(st, err)
		assert.Equal(st, first, second)
	})

	t.Run("expands cidr targets into individual hosts", func(st *testing.T) {
		candidates, err := discovery.GenerateCandidates(
			[]string{"10.1.1.0/30"},
			[]int{80},
			[]string{"/video"},
		)

		assert.NoError(st, err)
		assert.NotEmpty(st, candidates)

		hosts := map[string]bool{}

		for _, c := range candidates {
			hosts[c.Host] = true
		}

		assert.True(st, hosts["10.1.1.1"])
		assert.True(st, hosts["10.1.1.2"])
	})

	t.Run("returns empty sequence for empty inputs", func(st *testing.T) {
		candidates, err := discovery.GenerateCandidates(
			[]string{},
			[]int{80},
			[]string{"/video"},
		)

		assert.NoError(st, err)
		assert.Empty(st, candidates)

		candidates, err = discovery.GenerateCandidates(
			[]string{"10.0.0.5"},
			[]int{},
			[]string{"/video"},
		)

		assert.NoError(st, err)
		assert.Empty(st, candidates)

		candidates, err = discovery.GenerateCandidates(
			[]string{"10.0.0.5"},
			[]int{80},
			[]string{},
		)

		assert.NoError(st, err)
		assert.Empty(st, candidates)
	})

	t.Run("errors on unparseable cidr", func(st *testing.T) {
		_, err := discovery.GenerateCandidates(
			[]string{"not-a-subnet/99"},
			[]int{80},
			[]string{"/video"},
		)

		assert.Error(st, err)
	})

	t.Run("does not dedup overlapping targets", func(st *testing.T) {
		candidates, err := discovery.GenerateCandidates(
			[]string{"10.0.0.5", "10.0.0.5"},
			[]int{80},
			[]string{"/video"},
		)

		assert.NoError(st, err)
		assert.Equal(st, 2, len(candidates))
	})
}

func TestCandidate(t *testing.T) {
	t.Run("builds http urls for web ports", func(st *testing.T) {
		c := discovery.Candidate{Host: "10.0.0.5", Port: 8080, Path: "/mjpeg"}

		assert.False(st, c.IsRTSP())
		assert.Equal(st, "http://10.0.0.5:8080/mjpeg", c.URL())
		assert.Equal(st, "10.0.0.5:8080", c.Addr())
	})

	t.Run("builds rtsp urls for rtsp ports", func(st *testing.T) {
		c := discovery.Candidate{Host: "10.0.0.5", Port: 554, Path: "/live"}

		assert.True(st, c.IsRTSP())
		assert.Equal(st, "rtsp://10.0.0.5:554/live", c.URL())
	})
}
