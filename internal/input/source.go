package input

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Source delivers complete lines of text, without terminators.
// Next returns io.EOF once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// LineReader splits any byte stream (stdin, a serial port) on '\n'. Lines
// have no length limit. Next blocks in the underlying Read; Close unblocks it
// where the stream supports that.
type LineReader struct {
	name string
	r    *bufio.Reader
	c    io.Closer
}

// NewLineReader wraps r. If r is an io.Closer, Close closes it.
func NewLineReader(name string, r io.Reader) *LineReader {
	lr := &LineReader{name: name, r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		lr.c = c
	}
	return lr
}

func (l *LineReader) String() string { return l.name }

func (l *LineReader) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := l.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	// a final line without terminator is returned before io.EOF
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (l *LineReader) Close() error {
	if l.c == nil {
		return nil
	}
	return l.c.Close()
}
