package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// prompter asks questions on w and reads the answers from r.
type prompter struct {
	r        *bufio.Reader
	w        io.Writer
	password func(fd int) ([]byte, error)
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w, password: readPassword}
}

// readLine returns the next input line without its line ending. A final
// line without newline is returned as is; io.EOF is reported only when
// nothing was read.
func (p *prompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// text prints prompt and returns the trimmed answer.
func (p *prompter) text(prompt string) (string, error) {
	fmt.Fprintf(p.w, "%s\n> ", prompt)
	line, err := p.readLine()
	return strings.TrimSpace(line), err
}

// required is text that rejects an empty answer.
func (p *prompter) required(prompt string) (string, error) {
	v, err := p.text(prompt)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s: value required", strings.ToLower(prompt))
	}
	return v, nil
}

// secret reads a password without echo when stdin is a terminal.
// The caller should wipe the result.
func (p *prompter) secret(prompt string) ([]byte, error) {
	fmt.Fprintf(p.w, "%s: ", prompt)
	pw, err := p.password(int(os.Stdin.Fd()))
	fmt.Fprintln(p.w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// multiline reads lines until an empty one and joins them with '\n'.
func (p *prompter) multiline(prompt string) (string, error) {
	fmt.Fprintf(p.w, "%s\n(press Enter on an empty line to finish)\n", prompt)

	var lines []string
	for {
		line, err := p.readLine()
		if line == "" || err != nil {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
