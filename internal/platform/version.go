// Package platform reports the host OS version string returned by
// getPlatformVersion.
package platform

import "strings"

// Version returns the human readable OS version, e.g. "Linux #1 SMP ..."
// or "Windows 10+". Probe failures degrade to the bare OS name.
func Version() string {
	return version()
}

func linuxLabel(unameVersion string) string {
	return strings.TrimSpace("Linux " + unameVersion)
}

func macLabel(release string) string {
	return strings.TrimSpace("macOS " + release)
}

// windowsLabel buckets an OS version the way IsWindowsXOrGreater does
func windowsLabel(major, minor uint32) string {
	switch {
	case major >= 10:
		return "Windows 10+"
	case major == 6 && minor >= 2:
		return "Windows 8"
	case major == 6 && minor == 1:
		return "Windows 7"
	}
	return "Windows"
}

// unixLabel names other unix systems by sysname and release
func unixLabel(sysname, release string) string {
	if sysname == "" {
		return "Unix"
	}
	return strings.TrimSpace(sysname + " " + release)
}

func cString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Build is set by the linker for the version command
var Build = "dev"

// Describe returns the binary version and host OS on one line
func Describe() string {
	return "imagepicker " + Build + " (" + Version() + ")"
}
