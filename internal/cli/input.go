package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/rfaguiar/manifestops/internal/timeparse"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo. A newline is printed after
// the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetInstant prompts for a lifecycle instant in dashboard notation
// (DD/MM/YYYY HH:MM). An empty line or a placeholder yields nil with no
// error; input that parses to nothing is an error, never a guessed value.
func GetInstant(reader *bufio.Reader, prompt string, w io.Writer) (*time.Time, error) {
	raw, err := GetSimpleText(reader, prompt+" (DD/MM/YYYY HH:MM, empty to skip)", w)
	if err != nil {
		return nil, err
	}
	if raw == "" || raw == timeparse.Placeholder {
		return nil, nil
	}

	t := timeparse.Normalize(raw)
	if t == nil {
		return nil, fmt.Errorf("unrecognized instant %q", raw)
	}
	return t, nil
}
