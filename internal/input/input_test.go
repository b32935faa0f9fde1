package input

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader(t *testing.T) {
	r := NewLineReader("test", strings.NewReader("Hi!\r\n\na1 b2\nlast"))
	ctx := context.Background()
	for _, want := range []string{"Hi!", "", "a1 b2", "last"} {
		got, err := r.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

func TestLineReaderLongLine(t *testing.T) {
	long := strings.Repeat("ab ", 1<<20)
	r := NewLineReader("long", strings.NewReader(long+"\nhello\n"))
	ctx := context.Background()

	got, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(long), len(got))

	got, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", got, "reader keeps going after a long line")
}

func TestLineReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLineReader("x", strings.NewReader("a\n")).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindPort(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"ttyUSB0", "ttyACM1", "ttyACM0"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0600))
	}
	acm := filepath.Join(dir, "ttyACM*")
	usb := filepath.Join(dir, "ttyUSB*")

	got, err := FindPort([]string{acm, usb})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ttyACM0"), got)

	got, err = FindPort([]string{filepath.Join(dir, "none*"), usb})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ttyUSB0"), got)

	_, err = FindPort([]string{filepath.Join(dir, "none*")})
	assert.ErrorIs(t, err, ErrNoPort)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Hello world 42", Normalize("  Hello\n\tworld   42 \r\n"))
	assert.Equal(t, "", Normalize(" \n "))
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"abc def", "ghi"}, Chunk("abc def ghi", 8))
	assert.Equal(t, []string{"abcdefgh", "ij"}, Chunk("abcdefghij", 8))
	assert.Equal(t, []string{"abc"}, Chunk("abc", 8))
	assert.Nil(t, Chunk("", 8))

	text := Normalize(strings.Repeat("tactile reading ", 30))
	for _, c := range Chunk(text, MaxChunk) {
		assert.LessOrEqual(t, len(c), MaxChunk)
		assert.NotEqual(t, ' ', c[0])
	}
}

func TestChunkKeepsRunesWhole(t *testing.T) {
	text := "a" + strings.Repeat("é", 100)
	chunks := Chunk(text, MaxChunk)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c), "%q", c)
		assert.LessOrEqual(t, len(c), MaxChunk)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSender(t *testing.T) {
	var buf bytes.Buffer
	var slept []time.Duration
	s := Sender{
		W:     &buf,
		Pause: 150 * time.Millisecond,
		Sleep: func(_ context.Context, d time.Duration) error { slept = append(slept, d); return nil },
	}
	n, err := s.Send(context.Background(), strings.Repeat("word ", 50))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, slept, 2)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)

	n, err = s.Send(context.Background(), " \n")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestMQTTQueue(t *testing.T) {
	m := newMQTT(MQTTConf{Topic: "braille/text"}, zerolog.Nop())
	m.push([]byte("one\r\ntwo\n"))
	ctx := context.Background()

	got, err := m.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", got)
	got, err = m.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	for i := 0; i < queueDepth+10; i++ {
		m.push([]byte("x"))
	}
	assert.Len(t, m.lines, queueDepth)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	m.push([]byte("late"))
}

func TestMQTTNextAfterClose(t *testing.T) {
	m := newMQTT(MQTTConf{}, zerolog.Nop())
	require.NoError(t, m.Close())
	_, err := m.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	_, err = newMQTT(MQTTConf{}, zerolog.Nop()).Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
