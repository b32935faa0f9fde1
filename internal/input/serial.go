package input

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud matches the host sender.
const DefaultBaud = 115200

// PortPatterns are searched in order when no port is configured.
var PortPatterns = []string{"/dev/ttyACM*", "/dev/ttyUSB*"}

var ErrNoPort = errors.New("no serial port found")

// FindPort returns the first match of the first pattern that matches anything.
func FindPort(patterns []string) (string, error) {
	for _, p := range patterns {
		m, err := filepath.Glob(p)
		if err != nil {
			return "", err
		}
		if len(m) > 0 {
			sort.Strings(m)
			return m[0], nil
		}
	}
	return "", ErrNoPort
}

// OpenPort opens a serial port, discovering it when name is empty.
func OpenPort(name string, baud int, readTimeout time.Duration) (*serial.Port, string, error) {
	if name == "" {
		found, err := FindPort(PortPatterns)
		if err != nil {
			return nil, "", err
		}
		name = found
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: readTimeout})
	if err != nil {
		return nil, name, fmt.Errorf("open %s: %w", name, err)
	}
	return p, name, nil
}

// OpenSerial returns a line source reading from a serial port.
func OpenSerial(name string, baud int) (*LineReader, error) {
	p, name, err := OpenPort(name, baud, 0)
	if err != nil {
		return nil, err
	}
	return NewLineReader(name, p), nil
}
