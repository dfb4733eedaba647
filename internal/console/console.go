package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// ErrInputClosed reports that the input stream ended while a prompt was still
// waiting for an answer.
var ErrInputClosed = errors.New("input stream closed")

// LineReader is the capability interactive prompts read from. Commands get a
// terminal-backed reader; tests supply a scripted one.
type LineReader interface {
	ReadLine() (string, error)
}

// Terminal reads lines from an underlying reader, normally os.Stdin.
type Terminal struct {
	r *bufio.Reader
}

// NewTerminal wraps r in a Terminal.
func NewTerminal(r io.Reader) *Terminal {
	return &Terminal{r: bufio.NewReader(r)}
}

// Stdin returns a Terminal reading from standard input.
func Stdin() *Terminal {
	return NewTerminal(os.Stdin)
}

// ReadLine reads one line without its trailing newline. A closed stream with
// nothing buffered yields ErrInputClosed.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line == "" {
			return "", ErrInputClosed
		}
		if err != io.EOF {
			return "", err
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Choice prints a question followed by numbered choices and blocks until the
// reader supplies a valid index, which it returns.
func Choice(r LineReader, question string, choices ...string) (int, error) {
	fmt.Println(question)
	for i, choice := range choices {
		fmt.Printf("    %d) %s\n", i, choice)
	}

	for {
		fmt.Print("select an option: ")
		line, err := r.ReadLine()
		if err != nil {
			return 0, err
		}
		answer := strings.TrimSpace(line)
		idx, err := strconv.Atoi(answer)
		if err != nil || idx < 0 || idx >= len(choices) {
			fmt.Printf("'%s' is not a valid option\n", answer)
			continue
		}
		return idx, nil
	}
}

// Confirm asks a yes/no question; an empty answer counts as no.
func Confirm(r LineReader, question string) (bool, error) {
	fmt.Printf("%s [y/N]: ", question)
	line, err := r.ReadLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ReadPassword reads a line from the controlling terminal with echo turned
// off. Callers should check IsTerminal first.
func ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// IsTerminal reports whether standard input is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}
