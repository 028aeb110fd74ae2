package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/event"
	"github.com/blume-tech/jetson-app/internal/logger"
)

// scanJob tracks one scan from launch to terminal state. All fields
// are guarded by the coordinator mutex.
type scanJob struct {
	id         int64
	state      ScanState
	startedAt  time.Time
	finishedAt time.Time
	total      int
	checked    int
	found      int
	cancel     context.CancelFunc
}

// Coordinator implements the Service interface. It owns the current
// scan job lifecycle and is the only writer to the camera registry.
// Probe workers report back over a single fan-in channel and never
// touch shared state themselves.
type Coordinator struct {
	prober     Prober
	prescanner Prescanner
	registry   *camera.Registry
	events     event.Manager
	log        logger.Logger

	mux    sync.Mutex
	job    *scanJob
	nextID int64
}

// NewCoordinator returns a new instance of Coordinator
func NewCoordinator(
	prober Prober,
	prescanner Prescanner,
	registry *camera.Registry,
	events event.Manager,
) *Coordinator {
	return &Coordinator{
		prober:     prober,
		prescanner: prescanner,
		registry:   registry,
		events:     events,
		log:        logger.New(),
	}
}

// StartScan launches a new scan job and returns its id immediately.
// Any scan already running is cancelled first; the newest request
// always wins.
func (c *Coordinator) StartScan(req ScanRequest) int64 {
	req = req.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())

	c.mux.Lock()

	cancelled := c.cancelLocked()

	c.nextID++

	job := &scanJob{
		id:        c.nextID,
		state:     ScanRunning,
		startedAt: time.Now(),
		cancel:    cancel,
	}

	c.job = job

	started := c.snapshotLocked(job)

	c.mux.Unlock()

	if cancelled != nil {
		c.events.Send(event.Event{
			Type:    event.ScanCancelledEventType,
			Payload: *cancelled,
		})

		c.log.Info().
			Int64("scan-id", cancelled.ID).
			Msg("scan superseded by newer request")
	}

	c.events.Send(event.Event{
		Type:    event.ScanStartedEventType,
		Payload: started,
	})

	c.log.Info().Int64("scan-id", job.id).Msg("scan started")

	go c.run(ctx, job, req)

	return job.id
}

// Status reports the current scan job. Before the first scan the
// state is idle.
func (c *Coordinator) Status() ScanStatus {
	c.mux.Lock()
	defer c.mux.Unlock()

	if c.job == nil {
		return ScanStatus{State: ScanIdle}
	}

	return c.snapshotLocked(c.job)
}

// Cancel stops the running scan if there is one. Counters freeze at
// their last values and nothing is published. Safe to call at any
// time, in any state.
func (c *Coordinator) Cancel() {
	c.mux.Lock()
	cancelled := c.cancelLocked()
	c.mux.Unlock()

	if cancelled != nil {
		c.events.Send(event.Event{
			Type:    event.ScanCancelledEventType,
			Payload: *cancelled,
		})

		c.log.Info().Int64("scan-id", cancelled.ID).Msg("scan cancelled")
	}
}

// Stop cancels any running scan as part of shutdown
func (c *Coordinator) Stop() {
	c.Cancel()
}

// cancelLocked moves a running job to cancelled and returns its final
// status, or nil when nothing was running
func (c *Coordinator) cancelLocked() *ScanStatus {
	if c.job == nil || c.job.state != ScanRunning {
		return nil
	}

	c.job.state = ScanCancelled
	c.job.finishedAt = time.Now()
	c.job.cancel()

	status := c.snapshotLocked(c.job)

	return &status
}

func (c *Coordinator) snapshotLocked(job *scanJob) ScanStatus {
	return ScanStatus{
		ID:                job.id,
		State:             job.state,
		StartedAt:         job.startedAt,
		FinishedAt:        job.finishedAt,
		CandidatesTotal:   job.total,
		CandidatesChecked: job.checked,
		CamerasFound:      job.found,
	}
}

// run drives one scan job to a terminal state
func (c *Coordinator) run(ctx context.Context, job *scanJob, req ScanRequest) {
	defer job.cancel()

	hosts, err := ExpandTargets(req.Targets)

	if err != nil {
		c.fail(job, err)
		return
	}

	if req.Prescan && c.prescanner != nil {
		alive, err := c.prescanner.Prescan(ctx, hosts)

		if err != nil {
			c.log.Warn().
				Err(err).
				Msg("liveness prescan failed, probing all hosts")
		} else {
			hosts = alive
		}
	}

	candidates := Cross(hosts, req.Ports, req.Paths)

	c.mux.Lock()

	if job.state != ScanRunning {
		c.mux.Unlock()
		return
	}

	job.total = len(candidates)

	c.mux.Unlock()

	results := make(chan *ProbeResult)

	go c.fanOut(ctx, candidates, req, results)

	c.fanIn(job, results)
}

// fail marks a job failed. Only prerequisite problems land here; a
// probe that fails is a per candidate result, not a job failure.
func (c *Coordinator) fail(job *scanJob, err error) {
	c.mux.Lock()

	if job.state != ScanRunning {
		c.mux.Unlock()
		return
	}

	job.state = ScanFailed
	job.finishedAt = time.Now()

	status := c.snapshotLocked(job)

	c.mux.Unlock()

	c.log.Error().Err(err).Int64("scan-id", job.id).Msg("scan failed")

	c.events.Send(event.Event{
		Type:    event.ScanFailedEventType,
		Payload: status,
	})

	c.events.ReportError(fmt.Errorf("%s: %w", ErrScanPrerequisite, err))
}

// fanOut runs probes through a bounded worker pool and closes results
// once every launched probe has reported
func (c *Coordinator) fanOut(ctx context.Context, candidates []Candidate, req ScanRequest, results chan<- *ProbeResult) {
	semaphore := make(chan struct{}, req.Concurrency)
	wg := sync.WaitGroup{}

	for _, candidate := range candidates {
		// acquire
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
		}

		if ctx.Err() != nil {
			break
		}

		wg.Add(1)

		go func(cd Candidate) {
			defer wg.Done()

			r := c.prober.Probe(ctx, cd, req.ProbeTimeout)

			select {
			case results <- r:
			case <-ctx.Done():
			}

			// release
			<-semaphore
		}(candidate)
	}

	wg.Wait()
	close(results)
}

// fanIn is the single consumer of probe results. It owns the
// accumulating camera set and every counter update for the job.
func (c *Coordinator) fanIn(job *scanJob, results <-chan *ProbeResult) {
	previous := map[string]camera.Camera{}

	for _, cam := range c.registry.Snapshot() {
		previous[cam.ID] = cam
	}

	accumulated := map[string]camera.Camera{}

	for r := range results {
		c.mux.Lock()

		if job.state != ScanRunning {
			c.mux.Unlock()
			return
		}

		job.checked++

		if r.Validated {
			id := camera.NewID(r.Candidate.Host, r.Candidate.Port)

			existing, exists := accumulated[id]

			if !exists || supersedes(r.Protocol, existing.Protocol) {
				accumulated[id] = buildCamera(id, r, previous)
				job.found = len(accumulated)
			}
		}

		c.mux.Unlock()
	}

	c.complete(job, accumulated)
}

// complete publishes the accumulated set and moves the job to
// completed. This is the only place the registry is written.
func (c *Coordinator) complete(job *scanJob, accumulated map[string]camera.Camera) {
	c.mux.Lock()

	if job.state != ScanRunning {
		c.mux.Unlock()
		return
	}

	job.state = ScanCompleted
	job.finishedAt = time.Now()
	job.found = len(accumulated)

	status := c.snapshotLocked(job)

	cameras := make([]camera.Camera, 0, len(accumulated))

	for _, cam := range accumulated {
		cameras = append(cameras, cam)
	}

	// publish before releasing the job lock so a superseding scan can
	// never interleave its own publish with this one
	c.registry.Replace(cameras)

	published := c.registry.Snapshot()

	c.mux.Unlock()

	c.log.Info().
		Int64("scan-id", status.ID).
		Int("checked", status.CandidatesChecked).
		Int("cameras", status.CamerasFound).
		Msg("scan complete")

	c.events.Send(event.Event{
		Type:    event.ScanCompletedEventType,
		Payload: status,
	})

	c.events.Send(event.Event{
		Type:    event.CameraUpdateEventType,
		Payload: published,
	})
}

// supersedes returns true when a new protocol claim should replace an
// existing one for the same host and port. rtsp outranks mjpeg since
// it names the stream more precisely; otherwise the first result
// wins.
func supersedes(next, current camera.Protocol) bool {
	return next == camera.ProtocolRTSP && current != camera.ProtocolRTSP
}

func buildCamera(id string, r *ProbeResult, previous map[string]camera.Camera) camera.Camera {
	now := time.Now()

	manufacturer := r.Manufacturer

	if manufacturer == "" {
		manufacturer = "unknown"
	}

	cam := camera.Camera{
		ID:              id,
		Host:            r.Candidate.Host,
		Port:            r.Candidate.Port,
		Path:            r.Candidate.Path,
		URL:             r.Candidate.URL(),
		Protocol:        r.Protocol,
		Manufacturer:    manufacturer,
		DiscoveredAt:    now,
		LastValidatedAt: now,
	}

	// a camera seen in a previous scan keeps its original discovery
	// time
	if prev, ok := previous[id]; ok {
		cam.DiscoveredAt = prev.DiscoveredAt
	}

	return cam
}
