// Package console lets the game be played from a terminal: typed lines stand
// in for speech and host lines are printed instead of spoken.
package console

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineReader yields one line of player input per call. It returns io.EOF
// when input ends and readline.ErrInterrupt on Ctrl-C.
type LineReader interface {
	Readline() (string, error)
}

// Terminal bundles the line reader and output writer of a console session.
type Terminal struct {
	reader LineReader
	out    io.Writer
	width  int
	close  func() error
}

// Open attaches to stdin/stdout. An interactive terminal gets a readline
// prompt with history; piped input is read line by line so scripted
// sessions work too.
func Open(historyFile string) (*Terminal, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return &Terminal{
			reader: &scanReader{s: bufio.NewScanner(os.Stdin)},
			out:    os.Stdout,
			close:  func() error { return nil },
		}, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32myou>\033[0m ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 0
	}
	return &Terminal{reader: rl, out: rl.Stdout(), width: width, close: rl.Close}, nil
}

// Reader returns the player input source.
func (t *Terminal) Reader() LineReader { return t.reader }

// Writer returns the output sink. On an interactive terminal it redraws the
// prompt after each write.
func (t *Terminal) Writer() io.Writer { return t.out }

// Width returns the terminal width in columns, or 0 when unknown.
func (t *Terminal) Width() int { return t.width }

// Close releases the terminal.
func (t *Terminal) Close() error { return t.close() }

type scanReader struct {
	s *bufio.Scanner
}

func (r *scanReader) Readline() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// isInterrupt reports whether err is a Ctrl-C from readline.
func isInterrupt(err error) bool {
	return errors.Is(err, readline.ErrInterrupt)
}
