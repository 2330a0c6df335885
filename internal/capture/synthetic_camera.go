package capture

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// SyntheticCamera renders blank frames with an optional square that moves a
// few pixels per frame. It stands in for a device in tests and demos.
type SyntheticCamera struct {
	mu     sync.Mutex
	width  int
	height int
	moving bool
	fps    int
	frame  int
	open   bool
}

// NewSyntheticCamera creates a width x height synthetic source. When moving is
// set every frame differs enough from the last to trip the motion detector.
func NewSyntheticCamera(width, height int, moving bool) *SyntheticCamera {
	return &SyntheticCamera{width: width, height: height, moving: moving, fps: DefaultIdleFPS}
}

func (c *SyntheticCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.frame = 0
	return nil
}

func (c *SyntheticCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *SyntheticCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMatWithSize(c.height, c.width, gocv.MatTypeCV8UC3)
	if c.moving {
		side := c.height / 3
		span := max(c.width-side, 1)
		x := (c.frame * side / 2) % span
		rect := image.Rect(x, c.height/3, x+side, c.height/3+side)
		gocv.Rectangle(&mat, rect, color.RGBA{R: 255, G: 255, B: 255, A: 0}, -1)
	}
	c.frame++
	return &mat, nil
}

func (c *SyntheticCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *SyntheticCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *SyntheticCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Frames returns how many frames have been read since Open.
func (c *SyntheticCamera) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}
