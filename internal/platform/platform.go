// Package platform detects where superlane runs and whether file watching
// can be trusted there.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Platform is the detected operating environment
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var (
	detectOnce sync.Once
	detected   Platform
)

// Detect returns the current platform. The result is cached.
func Detect() Platform {
	detectOnce.Do(func() {
		detected = detectPlatform(runtime.GOOS, os.Getenv("WSL_DISTRO_NAME"), readProcVersion())
	})
	return detected
}

func readProcVersion() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return ""
	}
	return string(data)
}

func detectPlatform(goos, distro, procVersion string) Platform {
	switch goos {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
	default:
		return PlatformUnknown
	}

	wsl := distro != "" || strings.Contains(strings.ToLower(procVersion), "microsoft")
	if !wsl {
		return PlatformLinux
	}
	// WSL2 kernels report "microsoft-standard"; WSL1 reports "Microsoft"
	if strings.Contains(procVersion, "microsoft-standard") {
		return PlatformWSL2
	}
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	return PlatformWSL1
}

func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// WatchSupport describes how far fsnotify can be trusted for a path
type WatchSupport struct {
	// FSType is the filesystem holding the path, if known
	FSType string
	// Disabled means no events arrive at all
	Disabled bool
	// Warning is a user-facing note, empty when watching works normally
	Warning string
}

// CheckWatchSupport inspects the filesystem holding path. Snapshots on 9p
// (WSL2 Windows drives) or SSHFS never produce events; NFS and SMB mounts
// deliver them unreliably.
func CheckWatchSupport(path string) WatchSupport {
	if runtime.GOOS != "linux" {
		return WatchSupport{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return WatchSupport{}
	}
	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return WatchSupport{}
	}
	return classifyFS(mountFSType(abs, string(mounts)))
}

// mountFSType returns the filesystem type of the longest mount point
// containing abs, given the contents of /proc/mounts
func mountFSType(abs, mounts string) string {
	var bestMount, bestType string
	for line := range strings.SplitSeq(mounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mp := fields[1]
		if !underMount(abs, mp) || len(mp) <= len(bestMount) {
			continue
		}
		bestMount, bestType = mp, fields[2]
	}
	return bestType
}

func underMount(abs, mp string) bool {
	if mp == "/" || abs == mp {
		return true
	}
	return strings.HasPrefix(abs, strings.TrimSuffix(mp, "/")+"/")
}

func classifyFS(fsType string) WatchSupport {
	ws := WatchSupport{FSType: fsType}
	switch {
	case fsType == "9p":
		ws.Disabled = true
		ws.Warning = "workspace on a 9p mount (WSL2 Windows drive): live reload disabled"
	case strings.HasPrefix(fsType, "fuse.sshfs"):
		ws.Disabled = true
		ws.Warning = "workspace on an SSHFS mount: live reload disabled"
	case fsType == "nfs" || fsType == "nfs4":
		ws.Warning = "workspace on an NFS mount: live reload may miss changes"
	case fsType == "cifs" || fsType == "smbfs":
		ws.Warning = "workspace on a CIFS/SMB mount: live reload may miss changes"
	}
	return ws
}
