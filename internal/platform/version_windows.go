//go:build windows

package platform

import "golang.org/x/sys/windows"

func version() string {
	// RtlGetVersion is not subject to manifest based version lies
	v := windows.RtlGetVersion()
	if v == nil {
		return "Windows"
	}
	return windowsLabel(v.MajorVersion, v.MinorVersion)
}
