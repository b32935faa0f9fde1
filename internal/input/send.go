package input

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxChunk is the longest line the host sends in one go.
const MaxChunk = 120

// Normalize collapses every run of whitespace, newlines included, into a
// single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Chunk splits normalized text into pieces of at most max bytes, breaking at
// the last space inside the limit when there is one. Breaking spaces are
// dropped. A hard split never cuts through a UTF-8 sequence.
func Chunk(text string, max int) []string {
	if max <= 0 {
		max = MaxChunk
	}
	var out []string
	for len(text) > max {
		cut := strings.LastIndexByte(text[:max+1], ' ')
		if cut <= 0 {
			cut = max
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			out = append(out, text[:cut])
			text = text[cut:]
			continue
		}
		out = append(out, text[:cut])
		text = text[cut+1:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// Sender writes chunks as '\n'-terminated lines.
type Sender struct {
	W io.Writer
	// Pause is waited between chunks so the cell can drain its buffer.
	Pause time.Duration
	Sleep func(ctx context.Context, d time.Duration) error
}

// Send normalizes and chunks text, then writes it. It returns the number of
// chunks written.
func (s Sender) Send(ctx context.Context, text string) (int, error) {
	chunks := Chunk(Normalize(text), MaxChunk)
	for i, c := range chunks {
		if i > 0 && s.Pause > 0 && s.Sleep != nil {
			if err := s.Sleep(ctx, s.Pause); err != nil {
				return i, err
			}
		}
		if _, err := io.WriteString(s.W, c+"\n"); err != nil {
			return i, fmt.Errorf("chunk %d: %w", i, err)
		}
		if f, ok := s.W.(interface{ Flush() error }); ok {
			if err := f.Flush(); err != nil {
				return i, err
			}
		}
	}
	return len(chunks), nil
}
