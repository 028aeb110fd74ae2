package api

import (
	"bytes"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	app_info "github.com/blume-tech/jetson-app/internal/app-info"
	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/core"
	"github.com/blume-tech/jetson-app/internal/exception"
)

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        app_info.NAME,
		"version":     app_info.VERSION,
		"description": app_info.DESCRIPTION,
		"endpoints": gin.H{
			"ping":          "/ping - GET - liveness check",
			"metrics":       "/metrics - GET - latest telemetry sample",
			"status":        "/status - GET - composite service status",
			"system_info":   "/system-info - GET - platform and resource info",
			"test":          "/test-connection - GET - self test with details",
			"cameras":       "/cameras - GET - discovered ip cameras",
			"rescan":        "/cameras/rescan - POST - trigger a new scan",
			"stream":        "/cameras/:id/stream - GET - mjpeg relay",
			"scan_status":   "/scan/status - GET - current scan progress",
			"download_logs": "/download_logs - GET - telemetry history csv",
			"ws":            "/ws - GET - websocket event feed",
		},
	})
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"server":    app_info.NAME,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	sample, err := s.core.LatestSample()

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sample)
}

func (s *Server) handleStatus(c *gin.Context) {
	cameras := s.core.Cameras()
	urls := make([]string, 0, len(cameras))

	for _, cam := range cameras {
		urls = append(urls, cam.URL)
	}

	lastUpdate := "N/A"

	if sample, err := s.core.LatestSample(); err == nil {
		lastUpdate = sample.Timestamp.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"service_status":        "running",
		"version":               app_info.VERSION,
		"uptime_seconds":        s.core.Uptime().Seconds(),
		"data_points_collected": s.core.DataPoints(),
		"last_update":           lastUpdate,
		"api_port":              s.conf.Port,
		"cameras_discovered":    len(cameras),
		"camera_urls":           urls,
		"scan":                  s.core.ScanStatus(),
		"features": gin.H{
			"system_monitoring":   true,
			"ip_camera_discovery": true,
			"mjpeg_relay":         true,
			"csv_export":          true,
		},
	})
}

func (s *Server) handleSystemInfo(c *gin.Context) {
	info, err := host.Info()

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resources := gin.H{}

	if sample, err := s.core.LatestSample(); err == nil {
		resources["cpu_percent"] = sample.CPUPercent
		resources["memory_percent"] = sample.MemoryPercent
	}

	if usage, err := disk.Usage("/"); err == nil {
		resources["disk_percent"] = usage.UsedPercent
	}

	c.JSON(http.StatusOK, gin.H{
		"platform": gin.H{
			"hostname": info.Hostname,
			"system":   info.Platform,
			"release":  info.PlatformVersion,
			"kernel":   info.KernelVersion,
			"machine":  info.KernelArch,
		},
		"is_jetson": isJetson(info.KernelVersion),
		"runtime":   gin.H{"version": runtime.Version()},
		"resources": resources,
	})
}

func (s *Server) handleTestConnection(c *gin.Context) {
	issues := []string{}

	cameras := s.core.Cameras()
	camList := make([]gin.H, 0, len(cameras))

	for _, cam := range cameras {
		camList = append(camList, gin.H{
			"manufacturer": cam.Manufacturer,
			"ip":           cam.Host,
			"type":         cam.Protocol,
		})
	}

	performance := gin.H{}
	memory := gin.H{}

	sample, err := s.core.LatestSample()

	if err != nil {
		issues = append(issues, "no telemetry collected yet")
	} else {
		performance["cpu_usage_percent"] = sample.CPUPercent
		memory["ram_usage_percent"] = sample.MemoryPercent

		if sample.CPUPercent > 90 {
			issues = append(issues, "cpu usage is high")
		}

		if sample.MemoryPercent > 90 {
			issues = append(issues, "ram usage is high")
		}
	}

	if len(cameras) == 0 {
		issues = append(issues, "no cameras discovered")
	}

	overall := "success"
	message := "all checks passed"

	if len(issues) > 0 {
		overall = "warning"
		message = "some checks reported issues"
	}

	c.JSON(http.StatusOK, gin.H{
		"overall_status": overall,
		"message":        message,
		"test_details": gin.H{
			"server_status": gin.H{
				"uptime_seconds": s.core.Uptime().Seconds(),
				"api_port":       s.conf.Port,
			},
			"performance": performance,
			"memory":      memory,
			"camera_discovery": gin.H{
				"cameras_found": len(cameras),
				"cameras":       camList,
			},
		},
		"issues": issues,
	})
}

func (s *Server) handleCameras(c *gin.Context) {
	cameras := s.core.Cameras()

	c.JSON(http.StatusOK, gin.H{
		"cameras_found": len(cameras),
		"cameras":       cameras,
	})
}

func (s *Server) handleRescan(c *gin.Context) {
	overrides := core.ScanOverrides{}

	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&overrides); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	scanID := s.core.TriggerScan(overrides)

	c.JSON(http.StatusOK, gin.H{
		"scan_id": scanID,
		"message": "scan started in background",
	})
}

func (s *Server) handleScanStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.core.ScanStatus())
}

func (s *Server) handleDownloadLogs(c *gin.Context) {
	buf := &bytes.Buffer{}

	if err := s.core.TelemetryCSV(buf); err != nil {
		if errors.Is(err, exception.ErrNoSample) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header(
		"Content-Disposition",
		"attachment; filename=jetson_ip_camera_logs.csv",
	)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (s *Server) handleCameraStream(c *gin.Context) {
	cam, ok := s.core.Camera(c.Param("id"))

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown camera id"})
		return
	}

	if cam.Protocol != camera.ProtocolMJPEG {
		c.JSON(http.StatusConflict, gin.H{
			"error": "camera is not an mjpeg stream",
		})
		return
	}

	err := s.relay.ServeCamera(c.Request.Context(), c.Writer, *cam)

	if err != nil {
		s.log.Error().
			Err(err).
			Str("camera", cam.Addr()).
			Msg("stream relay failed")

		if !c.Writer.Written() {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
	}
}

// jetson kernels carry a tegra suffix
func isJetson(kernelVersion string) bool {
	return strings.Contains(strings.ToLower(kernelVersion), "tegra")
}
