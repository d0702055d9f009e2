//go:build !linux && !darwin && !windows && !freebsd && !netbsd && !openbsd && !dragonfly

package platform

import "runtime"

func version() string {
	return runtime.GOOS
}
