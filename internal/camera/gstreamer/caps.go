package gstreamer

import (
	"strconv"
	"strings"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

// dimensionsFromCaps returns the first raw video size found in gst output
// such as: caps = video/x-raw, format=(string)YUY2, width=(int)1280, height=(int)720
func dimensionsFromCaps(output string) (int, int) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "video/x-raw") || !strings.Contains(line, "width=") {
			continue
		}
		w := extractIntFromCaps(line, "width")
		h := extractIntFromCaps(line, "height")
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return 0, 0
}

// extractIntFromCaps reads "key=(int)N" or "key=N" from a caps string
func extractIntFromCaps(caps, key string) int {
	for _, pattern := range []string{key + "=(int)", key + "="} {
		idx := strings.Index(caps, pattern)
		if idx < 0 {
			continue
		}
		start := idx + len(pattern)
		end := start
		for end < len(caps) && caps[end] >= '0' && caps[end] <= '9' {
			end++
		}
		if end > start {
			if val, err := strconv.Atoi(caps[start:end]); err == nil {
				return val
			}
		}
	}
	return 0
}

// parseDeviceMonitor reads gst-device-monitor-1.0 output. Each device block
// carries a name and a ready-made launch line whose first element is the source.
func parseDeviceMonitor(out string) []camera.Device {
	var devs []camera.Device
	var name, class string

	flush := func(launch string) {
		if name == "" || (class != "" && class != "Video/Source") {
			return
		}
		src := strings.TrimSpace(strings.SplitN(launch, " ! ", 2)[0])
		if src == "" {
			return
		}
		devs = append(devs, camera.Device{
			ID:   "gst:" + strings.Fields(src)[0] + ":" + strconv.Itoa(len(devs)),
			Name: name,
			Path: src,
		})
	}

	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Device found"):
			name, class = "", ""
		case strings.HasPrefix(line, "name") && strings.Contains(line, ":"):
			name = strings.TrimSpace(line[strings.Index(line, ":")+1:])
		case strings.HasPrefix(line, "class") && strings.Contains(line, ":"):
			class = strings.TrimSpace(line[strings.Index(line, ":")+1:])
		case strings.HasPrefix(line, "gst-launch-1.0 "):
			flush(strings.TrimPrefix(line, "gst-launch-1.0 "))
			name = ""
		}
	}
	return devs
}
