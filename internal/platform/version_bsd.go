//go:build freebsd || netbsd || openbsd || dragonfly

package platform

import "golang.org/x/sys/unix"

func version() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "Unix"
	}
	return unixLabel(cString(u.Sysname[:]), cString(u.Release[:]))
}
