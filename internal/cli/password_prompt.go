package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errNoTerminal = errors.New("no terminal available for the password prompt")

// readSecretLine returns the next line without its line ending. A stream that
// ends before any input is an error, never an empty password.
func readSecretLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", io.ErrUnexpectedEOF
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
