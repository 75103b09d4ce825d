package collect

import "strings"

// Platform is the operating system of the monitored host.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformUnknown Platform = "unknown"
)

// PlatformDetectCommand prints the kernel name.
const PlatformDetectCommand = "uname -s"

// ParsePlatform converts uname output (or runtime.GOOS) to a Platform.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	default:
		return PlatformUnknown
	}
}
