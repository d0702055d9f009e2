package rawproc

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/SwanFlutter/image-picker-master/internal/camera"
)

// Default locations of V4L2 device nodes and their sysfs attributes
const (
	V4L2DevDir = "/dev"
	V4L2SysDir = "/sys/class/video4linux"
)

// ListV4L2 returns /dev/video* nodes in index order, named from sysfs
func ListV4L2(devDir, sysDir string) ([]camera.Device, error) {
	nodes, err := filepath.Glob(filepath.Join(devDir, "video*"))
	if err != nil {
		return nil, err
	}
	sort.Slice(nodes, func(i, j int) bool {
		return videoIndex(nodes[i]) < videoIndex(nodes[j])
	})

	devs := make([]camera.Device, 0, len(nodes))
	for _, node := range nodes {
		base := filepath.Base(node)
		if videoIndex(node) < 0 {
			continue
		}
		name := base
		if data, err := os.ReadFile(filepath.Join(sysDir, base, "name")); err == nil {
			if n := strings.TrimSpace(string(data)); n != "" {
				name = n
			}
		}
		devs = append(devs, camera.Device{ID: base, Name: name, Path: node})
	}
	return devs, nil
}

func videoIndex(node string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(node), "video"))
	if err != nil {
		return -1
	}
	return n
}
