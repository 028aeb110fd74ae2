package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	app_info "github.com/blume-tech/jetson-app/internal/app-info"
	"github.com/blume-tech/jetson-app/internal/camera"
	"github.com/blume-tech/jetson-app/internal/logger"
)

const copyBufferSize = 32 * 1024

// Relay proxies mjpeg streams from cameras to http clients so browsers
// never need direct network access to the camera subnet
type Relay struct {
	client *http.Client
	log    logger.Logger
}

// NewRelay returns a new instance of Relay. The underlying client has
// no timeout as mjpeg streams are long lived by design.
func NewRelay() *Relay {
	return &Relay{
		client: &http.Client{},
		log:    logger.New(),
	}
}

// ServeCamera streams the camera's mjpeg feed to w until the camera
// closes the connection or ctx is cancelled. A client disconnect is a
// normal end of stream, not an error.
func (r *Relay) ServeCamera(ctx context.Context, w http.ResponseWriter, cam camera.Camera) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cam.URL, nil)

	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", app_info.NAME+"/"+app_info.VERSION)

	resp, err := r.client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("camera %s returned status %d", cam.Addr(), resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")

	if contentType == "" {
		contentType = "multipart/x-mixed-replace"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	r.log.Info().
		Str("camera", cam.Addr()).
		Msg("relaying mjpeg stream")

	buf := make([]byte, copyBufferSize)

	for {
		n, readErr := resp.Body.Read(buf)

		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return nil
			}

			if flusher != nil {
				flusher.Flush()
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return readErr
		}
	}
}
