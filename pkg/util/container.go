// Package util has small helpers that don't fit anywhere else
package util

import "os"

// IsRunningInContainer reports whether the process runs inside docker or
// podman. Podman exports container=podman instead of creating /.dockerenv
func IsRunningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return os.Getenv("container") != ""
}
