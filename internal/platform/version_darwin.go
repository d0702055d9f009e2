//go:build darwin

package platform

import "golang.org/x/sys/unix"

func version() string {
	release, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return "macOS"
	}
	return macLabel(release)
}
