package wavmeta

import (
	"fmt"
	"math"
	"time"
)

// Timecode formats d as HH:MM:SS:FF at the given frame rate. The frame
// field is the truncated fraction of the last second.
func Timecode(d time.Duration, fps int) string {
	if d < 0 {
		d = 0
	}

	secs := d.Seconds()
	whole := int64(secs)

	frames := 0
	if fps > 0 {
		frames = int(math.Floor((secs - float64(whole)) * float64(fps)))
	}

	return fmt.Sprintf("%02d:%02d:%02d:%02d", whole/3600, (whole/60)%60, whole%60, frames)
}

// Tracks returns the Avid track label for a channel count: A1 for mono,
// A1A2 for stereo and A1A<n> above that.
func Tracks(channels int) string {
	switch {
	case channels <= 1:
		return "A1"
	case channels == 2:
		return "A1A2"
	default:
		return fmt.Sprintf("A1A%d", channels)
	}
}
