package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

// parseAVFoundation reads lines like
//
//	[AVFoundation indev @ 0x7f8] [0] FaceTime HD Camera
//
// from the video section of an avfoundation listing
func parseAVFoundation(out string) []camera.Device {
	var devs []camera.Device
	inVideo := false
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "AVFoundation video devices:"):
			inVideo = true
			continue
		case strings.Contains(line, "AVFoundation audio devices:"):
			inVideo = false
			continue
		}
		if !inVideo {
			continue
		}
		parts := strings.SplitN(line, "] [", 2)
		if len(parts) != 2 {
			continue
		}
		idx := strings.Index(parts[1], "] ")
		if idx <= 0 {
			continue
		}
		index := parts[1][:idx]
		if _, err := strconv.Atoi(index); err != nil {
			continue
		}
		name := strings.TrimSpace(parts[1][idx+2:])
		// Screen capture inputs are listed alongside cameras
		if strings.HasPrefix(name, "Capture screen") {
			continue
		}
		devs = append(devs, camera.Device{ID: "avfoundation:" + index, Name: name, Path: index})
	}
	return devs
}

// parseDShow reads both the legacy section layout and the newer
// `"Name" (video)` annotation from a dshow listing
func parseDShow(out string) []camera.Device {
	var devs []camera.Device
	inVideo := false
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "DirectShow video devices"):
			inVideo = true
			continue
		case strings.Contains(line, "DirectShow audio devices"):
			inVideo = false
			continue
		case strings.Contains(line, "Alternative name"):
			continue
		}
		start := strings.IndexByte(line, '"')
		end := strings.LastIndexByte(line, '"')
		if start < 0 || end <= start {
			continue
		}
		name := line[start+1 : end]
		rest := line[end+1:]
		if strings.Contains(rest, "(audio)") {
			continue
		}
		if !inVideo && !strings.Contains(rest, "(video)") {
			continue
		}
		devs = append(devs, camera.Device{ID: "dshow:" + name, Name: name, Path: name})
	}
	return devs
}
