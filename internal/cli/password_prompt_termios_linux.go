//go:build linux

package cli

import "golang.org/x/sys/unix"

// ioctl requests that read and write the terminal mode.
const (
	termiosReadRequest  = unix.TCGETS
	termiosWriteRequest = unix.TCSETS
)
