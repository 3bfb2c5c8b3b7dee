//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// withEchoDisabled calls read while the terminal behind stdin does not echo.
// Piped input has no echo to hide and is read as is.
func withEchoDisabled(stdin *os.File, read func() (string, error)) (string, error) {
	fd := int(stdin.Fd())
	saved, err := unix.IoctlGetTermios(fd, termiosReadRequest)
	if errors.Is(err, unix.ENOTTY) {
		return read()
	}
	if err != nil {
		return "", fmt.Errorf("get terminal mode: %w", err)
	}

	silent := *saved
	silent.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, termiosWriteRequest, &silent); err != nil {
		return "", fmt.Errorf("disable echo: %w", err)
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, termiosWriteRequest, saved)
	}()
	return read()
}
