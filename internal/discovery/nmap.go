package discovery

import (
	"context"
	"strconv"

	"github.com/Ullaakut/nmap/v3"
	"github.com/blume-tech/jetson-app/internal/logger"
)

// LivenessScanner narrows the candidate host space to hosts nmap
// reports as up before the full probe pass. Skipping dead addresses
// keeps large subnet scans from spending a timeout per absent host.
type LivenessScanner struct {
	log logger.Logger
}

// NewLivenessScanner returns a new instance of LivenessScanner
func NewLivenessScanner() *LivenessScanner {
	return &LivenessScanner{
		log: logger.New(),
	}
}

// Prescan returns the subset of hosts that responded to a ping scan
func (s *LivenessScanner) Prescan(ctx context.Context, hosts []string) ([]string, error) {
	if len(hosts) == 0 {
		return hosts, nil
	}

	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(hosts...),
		nmap.WithPingScan(),
		nmap.WithTimingTemplate(nmap.TimingFastest),
		nmap.WithVerbosity(10),
	)

	if err != nil {
		return nil, err
	}

	s.log.Info().Int("hosts", len(hosts)).Msg("running liveness prescan")

	result, warnings, err := scanner.Run()

	if warnings != nil && len(*warnings) > 0 {
		fields := map[string]interface{}{}

		for i, warning := range *warnings {
			fields[strconv.Itoa(i)] = warning
		}

		s.log.Warn().
			Fields(fields).
			Msg("encountered liveness prescan warnings")
	}

	if err != nil {
		return nil, err
	}

	alive := []string{}

	for _, host := range result.Hosts {
		if host.Status.String() != "up" {
			continue
		}

		if len(host.Addresses) == 0 {
			continue
		}

		alive = append(alive, host.Addresses[0].String())
	}

	s.log.Info().
		Int("alive", len(alive)).
		Int("total", len(hosts)).
		Msg("liveness prescan complete")

	return alive, nil
}
