package telemetry

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/blume-tech/jetson-app/internal/exception"
	"github.com/blume-tech/jetson-app/internal/logger"
)

// Monitor polls a Sampler on a fixed interval and retains a bounded
// history of samples for the csv export and status endpoints
type Monitor struct {
	ctx        context.Context
	cancel     context.CancelFunc
	sampler    Sampler
	interval   time.Duration
	maxHistory int
	log        logger.Logger
	mux        sync.Mutex
	latest     *Sample
	history    []*Sample
}

// NewMonitor returns a new instance of Monitor
func NewMonitor(sampler Sampler, interval time.Duration, maxHistory int) *Monitor {
	ctxWithCancel, cancel := context.WithCancel(context.Background())

	return &Monitor{
		ctx:        ctxWithCancel,
		cancel:     cancel,
		sampler:    sampler,
		interval:   interval,
		maxHistory: maxHistory,
		log:        logger.New(),
	}
}

// Start begins polling in a background goroutine until Stop is called
func (m *Monitor) Start() {
	go func() {
		m.collect()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.collect()
			}
		}
	}()
}

// Stop halts polling. Collected history remains readable.
func (m *Monitor) Stop() {
	m.cancel()
}

// Latest returns the most recent sample or exception.ErrNoSample if
// nothing has been collected yet
func (m *Monitor) Latest() (*Sample, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.latest == nil {
		return nil, exception.ErrNoSample
	}

	return m.latest, nil
}

// DataPoints returns the number of samples currently held in history
func (m *Monitor) DataPoints() int {
	m.mux.Lock()
	defer m.mux.Unlock()

	return len(m.history)
}

// WriteCSV writes the held history as csv. Column order is stable:
// identity columns first, then the remaining metric keys sorted.
func (m *Monitor) WriteCSV(w io.Writer) error {
	m.mux.Lock()
	history := make([]*Sample, len(m.history))
	copy(history, m.history)
	m.mux.Unlock()

	if len(history) == 0 {
		return exception.ErrNoSample
	}

	header := []string{
		"timestamp",
		"uptime_seconds",
		"board",
		"cpu_usage_percent",
		"ram_usage_percent",
	}

	base := map[string]bool{}

	for _, col := range header {
		base[col] = true
	}

	extras := []string{}

	for key := range flatten(history[0]) {
		if !base[key] {
			extras = append(extras, key)
		}
	}

	sort.Strings(extras)
	header = append(header, extras...)

	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sample := range history {
		row := flatten(sample)
		record := make([]string, len(header))

		for i, col := range header {
			record[i] = row[col]
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

func (m *Monitor) collect() {
	sample, err := m.sampler.Sample()

	if err != nil {
		m.log.Warn().Err(err).Msg("telemetry sample failed")
		return
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	m.latest = sample
	m.history = append(m.history, sample)

	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
}

func flatten(s *Sample) map[string]string {
	row := map[string]string{
		"timestamp":         s.Timestamp.UTC().Format(time.RFC3339),
		"uptime_seconds":    strconv.FormatUint(s.UptimeSeconds, 10),
		"board":             s.Board,
		"cpu_usage_percent": formatFloat(s.CPUPercent),
		"ram_usage_percent": formatFloat(s.MemoryPercent),
	}

	for key, val := range s.PerCPU {
		row[key] = formatFloat(val)
	}

	for key, val := range s.Memory {
		row[key] = strconv.FormatUint(val, 10)
	}

	for key, val := range s.Temperatures {
		row["temp_"+key] = formatFloat(val)
	}

	for key, val := range s.Load {
		row[key] = formatFloat(val)
	}

	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
