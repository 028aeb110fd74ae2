package discovery_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/discovery"
	"github.com/blume-tech/jetson-app/internal/event"
	mock_discovery "github.com/blume-tech/jetson-app/internal/mock/discovery"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func waitForTerminal(t *testing.T, service discovery.Service) discovery.ScanStatus {
	t.Helper()

	for i := 0; i < 500; i++ {
		status := service.Status()

		if status.State.Terminal() {
			return status
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Logf("scan never reached a terminal state")
	t.FailNow()

	return discovery.ScanStatus{}
}

func validatedResult(c discovery.Candidate, protocol camera.Protocol, manufacturer string) *discovery.ProbeResult {
	return &discovery.ProbeResult{
		Candidate:    c,
		Reachable:    true,
		Protocol:     protocol,
		Manufacturer: manufacturer,
		Validated:    true,
	}
}

func failedResult(c discovery.Candidate, kind discovery.ErrorKind) *discovery.ProbeResult {
	reachable := kind != discovery.ErrConnectFailed

	return &discovery.ProbeResult{
		Candidate: c,
		Reachable: reachable,
		Protocol:  camera.ProtocolUnknown,
		Error:     kind,
	}
}

func TestCoordinator(t *testing.T) {
	t.Run("publishes single camera from mixed probe outcomes", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				if c.Port == 554 {
					return failedResult(c, discovery.ErrConnectFailed)
				}

				if c.Path == "/mjpeg" {
					return validatedResult(c, camera.ProtocolMJPEG, "axis")
				}

				return failedResult(c, discovery.ErrValidationFailed)
			}).
			Times(4)

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.5"},
			Ports:   []int{80, 554},
			Paths:   []string{"/mjpeg", "/stream"},
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 4, status.CandidatesTotal)
		assert.Equal(st, 4, status.CandidatesChecked)
		assert.Equal(st, 1, status.CamerasFound)

		snapshot := registry.Snapshot()

		assert.Equal(st, 1, len(snapshot))
		assert.Equal(st, "10.0.0.5", snapshot[0].Host)
		assert.Equal(st, 80, snapshot[0].Port)
		assert.Equal(st, camera.ProtocolMJPEG, snapshot[0].Protocol)
		assert.Equal(st, "axis", snapshot[0].Manufacturer)
		assert.Equal(st, "http://10.0.0.5:80/mjpeg", snapshot[0].URL)
	})

	t.Run("publishes nothing when every probe fails validation", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				return failedResult(c, discovery.ErrValidationFailed)
			}).
			AnyTimes()

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.5"},
			Ports:   []int{554},
			Paths:   []string{"/live"},
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 0, status.CamerasFound)
		assert.Empty(st, registry.Snapshot())
	})

	t.Run("dedups host port pairs keeping first validation", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				return validatedResult(c, camera.ProtocolMJPEG, "")
			}).
			Times(3)

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets:     []string{"10.0.0.5"},
			Ports:       []int{8080},
			Paths:       []string{"/video", "/mjpeg", "/stream"},
			Concurrency: 1,
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 3, status.CandidatesChecked)
		assert.Equal(st, 1, status.CamerasFound)

		snapshot := registry.Snapshot()

		assert.Equal(st, 1, len(snapshot))
		assert.Equal(st, "/video", snapshot[0].Path)
		assert.Equal(st, "unknown", snapshot[0].Manufacturer)
	})

	t.Run("rtsp validation supersedes mjpeg for same host and port", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				if c.Path == "/video" {
					return validatedResult(c, camera.ProtocolMJPEG, "")
				}

				return validatedResult(c, camera.ProtocolRTSP, "")
			}).
			Times(2)

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets:     []string{"10.0.0.5"},
			Ports:       []int{8080},
			Paths:       []string{"/video", "/stream"},
			Concurrency: 1,
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 1, status.CamerasFound)

		snapshot := registry.Snapshot()

		assert.Equal(st, 1, len(snapshot))
		assert.Equal(st, camera.ProtocolRTSP, snapshot[0].Protocol)
	})

	t.Run("cancel freezes counters and publishes nothing", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		gate := make(chan struct{})

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				<-gate
				return validatedResult(c, camera.ProtocolMJPEG, "")
			}).
			AnyTimes()

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets:     []string{"10.0.0.5"},
			Ports:       []int{80, 8080, 8081, 443},
			Paths:       []string{"/a", "/b", "/c", "/d", "/e"},
			Concurrency: 1,
		})

		for i := 0; i < 8; i++ {
			gate <- struct{}{}
		}

		for i := 0; i < 500; i++ {
			if service.Status().CandidatesChecked == 8 {
				break
			}

			time.Sleep(5 * time.Millisecond)
		}

		service.Cancel()

		close(gate)

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCancelled, status.State)
		assert.Equal(st, 20, status.CandidatesTotal)
		assert.Equal(st, 8, status.CandidatesChecked)
		assert.False(st, status.FinishedAt.IsZero())
		assert.Empty(st, registry.Snapshot())

		// cancel is idempotent
		service.Cancel()

		assert.Equal(st, discovery.ScanCancelled, service.Status().State)
		assert.Equal(st, 8, service.Status().CandidatesChecked)
	})

	t.Run("new scan supersedes a running one", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		eventChan := make(chan event.Event, 100)
		eventManager.RegisterListener(event.ScanCancelledEventType, eventChan)

		var blocking int32 = 1

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				if atomic.LoadInt32(&blocking) == 1 {
					<-ctx.Done()
					return failedResult(c, discovery.ErrConnectFailed)
				}

				return validatedResult(c, camera.ProtocolMJPEG, "")
			}).
			AnyTimes()

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		firstID := service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.5"},
			Ports:   []int{80},
			Paths:   []string{"/video"},
		})

		for i := 0; i < 500; i++ {
			if service.Status().State == discovery.ScanRunning {
				break
			}

			time.Sleep(5 * time.Millisecond)
		}

		atomic.StoreInt32(&blocking, 0)

		secondID := service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.6"},
			Ports:   []int{80},
			Paths:   []string{"/video"},
		})

		assert.NotEqual(st, firstID, secondID)
		assert.Equal(st, secondID, service.Status().ID)

		cancelledEvt := <-eventChan
		cancelledStatus := cancelledEvt.Payload.(discovery.ScanStatus)

		assert.Equal(st, firstID, cancelledStatus.ID)
		assert.Equal(st, discovery.ScanCancelled, cancelledStatus.State)

		status := waitForTerminal(st, service)

		assert.Equal(st, secondID, status.ID)
		assert.Equal(st, discovery.ScanCompleted, status.State)

		snapshot := registry.Snapshot()

		assert.Equal(st, 1, len(snapshot))
		assert.Equal(st, "10.0.0.6", snapshot[0].Host)
	})

	t.Run("fails only when candidate generation fails", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		eventChan := make(chan event.Event, 100)
		eventManager.RegisterListener(event.ScanFailedEventType, eventChan)

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		id := service.StartScan(discovery.ScanRequest{
			Targets: []string{"bogus/99"},
			Ports:   []int{80},
			Paths:   []string{"/video"},
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, id, status.ID)
		assert.Equal(st, discovery.ScanFailed, status.State)
		assert.Equal(st, 0, status.CandidatesTotal)
		assert.Equal(st, 0, status.CandidatesChecked)
		assert.Empty(st, registry.Snapshot())

		evt := <-eventChan

		assert.Equal(st, event.ScanFailedEventType, evt.Type)
	})

	t.Run("prescan narrows the host space", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		mockPrescanner := mock_discovery.NewMockPrescanner(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockPrescanner.EXPECT().
			Prescan(gomock.Any(), []string{"10.0.0.5", "10.0.0.6"}).
			Return([]string{"10.0.0.5"}, nil)

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				assert.Equal(st, "10.0.0.5", c.Host)
				return failedResult(c, discovery.ErrConnectFailed)
			}).
			Times(2)

		service := discovery.NewCoordinator(mockProber, mockPrescanner, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.5", "10.0.0.6"},
			Ports:   []int{80, 554},
			Paths:   []string{"/video"},
			Prescan: true,
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 2, status.CandidatesTotal)
	})

	t.Run("prescan failure falls back to probing all hosts", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		mockPrescanner := mock_discovery.NewMockPrescanner(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockPrescanner.EXPECT().
			Prescan(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("nmap not installed"))

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				return failedResult(c, discovery.ErrConnectFailed)
			}).
			Times(2)

		service := discovery.NewCoordinator(mockProber, mockPrescanner, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.5", "10.0.0.6"},
			Ports:   []int{80},
			Paths:   []string{"/video"},
			Prescan: true,
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 2, status.CandidatesTotal)
	})

	t.Run("empty targets complete immediately with empty result", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets: []string{},
			Ports:   []int{80},
			Paths:   []string{"/video"},
		})

		status := waitForTerminal(st, service)

		assert.Equal(st, discovery.ScanCompleted, status.State)
		assert.Equal(st, 0, status.CandidatesTotal)
		assert.Equal(st, 0, status.CamerasFound)
	})

	t.Run("completed rescan prunes stale cameras and keeps discovery time", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				if c.Host == "10.0.0.5" {
					return validatedResult(c, camera.ProtocolMJPEG, "")
				}

				return failedResult(c, discovery.ErrConnectFailed)
			}).
			AnyTimes()

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		req := discovery.ScanRequest{
			Targets: []string{"10.0.0.5", "10.0.0.9"},
			Ports:   []int{80},
			Paths:   []string{"/video"},
		}

		service.StartScan(req)
		waitForTerminal(st, service)

		first := registry.Snapshot()

		assert.Equal(st, 1, len(first))

		discoveredAt := first[0].DiscoveredAt

		time.Sleep(20 * time.Millisecond)

		service.StartScan(req)
		waitForTerminal(st, service)

		second := registry.Snapshot()

		assert.Equal(st, 1, len(second))
		assert.Equal(st, discoveredAt, second[0].DiscoveredAt)
		assert.True(st, second[0].LastValidatedAt.After(discoveredAt))
	})

	t.Run("emits completed and camera update events", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		mockProber := mock_discovery.NewMockProber(ctrl)
		registry := camera.NewRegistry()
		eventManager := event.NewEventManager()

		completedChan := make(chan event.Event, 100)
		cameraChan := make(chan event.Event, 100)

		eventManager.RegisterListener(event.ScanCompletedEventType, completedChan)
		eventManager.RegisterListener(event.CameraUpdateEventType, cameraChan)

		mockProber.EXPECT().
			Probe(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, c discovery.Candidate, timeout time.Duration) *discovery.ProbeResult {
				return validatedResult(c, camera.ProtocolMJPEG, "axis")
			}).
			Times(1)

		service := discovery.NewCoordinator(mockProber, nil, registry, eventManager)

		service.StartScan(discovery.ScanRequest{
			Targets: []string{"10.0.0.5"},
			Ports:   []int{80},
			Paths:   []string{"/mjpeg"},
		})

		completedEvt := <-completedChan
		completedStatus := completedEvt.Payload.(discovery.ScanStatus)

		assert.Equal(st, discovery.ScanCompleted, completedStatus.State)
		assert.Equal(st, 1, completedStatus.CamerasFound)

		cameraEvt := <-cameraChan
		cameras := cameraEvt.Payload.([]camera.Camera)

		assert.Equal(st, 1, len(cameras))
		assert.Equal(st, "axis", cameras[0].Manufacturer)
	})
}
