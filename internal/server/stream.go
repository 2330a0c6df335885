package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"gocv.io/x/gocv"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

var (
	cursorColor = color.RGBA{R: 0, G: 220, B: 255, A: 0}
	labelColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// Preview keeps the latest camera frame as an annotated JPEG. Observe is an
// app.FrameObserver.
type Preview struct {
	mu      sync.RWMutex
	jpeg    []byte
	version uint64
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{}
}

// Observe mirrors frame to screen space, draws the cursor and the current
// gesture and mode, and stores the encoded result.
func (p *Preview) Observe(frame *gocv.Mat, result app.FrameResult) {
	if frame == nil || frame.Empty() {
		return
	}

	mirrored := gocv.NewMat()
	defer mirrored.Close()
	gocv.Flip(*frame, &mirrored, 1)

	w, h := mirrored.Cols(), mirrored.Rows()
	cursor := image.Pt(int(result.Cursor.X*float64(w)), int(result.Cursor.Y*float64(h)))
	thickness := 2
	if result.Tracked {
		thickness = -1
	}
	gocv.Circle(&mirrored, cursor, 8, cursorColor, thickness)

	label := fmt.Sprintf("%s  %s", result.Mode, result.Effective)
	gocv.PutText(&mirrored, label, image.Pt(10, 24), gocv.FontHersheySimplex, 0.6, labelColor, 2)

	buf, err := gocv.IMEncode(".jpg", mirrored)
	if err != nil {
		return
	}
	defer buf.Close()
	encoded := append([]byte(nil), buf.GetBytes()...)

	p.mu.Lock()
	p.jpeg = encoded
	p.version++
	p.mu.Unlock()
}

// Latest returns the last encoded frame and its version. Version zero means
// no frame yet.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.version
}

// StreamHandler serves the preview as MJPEG.
type StreamHandler struct {
	preview  *Preview
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler for preview.
func NewStreamHandler(preview *Preview) *StreamHandler {
	return &StreamHandler{preview: preview, interval: streamInterval}
}

// ServeHTTP streams each new preview frame until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var sent uint64
	for {
		if jpeg, version := h.preview.Latest(); version != sent {
			sent = version
			if err := writePart(w, jpeg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
