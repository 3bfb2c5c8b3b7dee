//go:build windows

package cli

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// withEchoDisabled calls read while the console behind stdin does not echo.
// A handle without a console mode is a pipe or file and is read as is.
func withEchoDisabled(stdin *os.File, read func() (string, error)) (string, error) {
	handle := windows.Handle(stdin.Fd())
	var saved uint32
	if err := windows.GetConsoleMode(handle, &saved); err != nil {
		return read()
	}

	if err := windows.SetConsoleMode(handle, saved&^windows.ENABLE_ECHO_INPUT); err != nil {
		return "", fmt.Errorf("disable echo: %w", err)
	}
	defer func() {
		_ = windows.SetConsoleMode(handle, saved)
	}()
	return read()
}
