//go:build linux

package platform

import "golang.org/x/sys/unix"

func version() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "Linux"
	}
	return linuxLabel(cString(u.Version[:]))
}
