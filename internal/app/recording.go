package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ayusman/mudra/internal/landmark"
)

// RecordedFrame is one tracker frame. An absent landmark list is a lost
// frame; a list that is not 21 points long is malformed.
type RecordedFrame struct {
	// Offset is the capture time in milliseconds from the start.
	Offset     int64              `json:"t"`
	Landmarks  []landmark.Point3D `json:"landmarks,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
}

// Recording is a captured landmark sequence.
type Recording struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Frames      []RecordedFrame `json:"frames"`
}

// ReadRecording decodes a JSON recording.
func ReadRecording(r io.Reader) (*Recording, error) {
	var rec Recording
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding recording: %w", err)
	}
	if len(rec.Frames) == 0 {
		return nil, errors.New("recording has no frames")
	}
	for i := 1; i < len(rec.Frames); i++ {
		if rec.Frames[i].Offset < rec.Frames[i-1].Offset {
			return nil, fmt.Errorf("frame %d: time goes backwards", i)
		}
	}
	return &rec, nil
}

// Replay feeds every frame of rec through the session, timestamped from
// start, and calls fn with each result. It does not sleep between frames.
func (s *Session) Replay(rec *Recording, start time.Time, fn func(FrameResult)) {
	for _, f := range rec.Frames {
		now := start.Add(time.Duration(f.Offset) * time.Millisecond)
		var res FrameResult
		if f.Landmarks == nil {
			res = s.Lost(now)
		} else {
			res = s.ProcessPoints(f.Landmarks, f.Confidence, now)
		}
		if fn != nil {
			fn(res)
		}
	}
}
