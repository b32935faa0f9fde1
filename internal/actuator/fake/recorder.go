package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
)

// Op names one recorded effect.
type Op string

const (
	On   Op = "on"
	Off  Op = "off"
	Wait Op = "wait"
)

// Event is one driver call or wait, in the order it happened.
type Event struct {
	Op       Op
	Channel  actuator.Channel
	Strength uint8
	D        time.Duration
}

func (e Event) String() string {
	switch e.Op {
	case On:
		return fmt.Sprintf("on(%s,%d)", e.Channel, e.Strength)
	case Off:
		return fmt.Sprintf("off(%s)", e.Channel)
	}
	return fmt.Sprintf("wait(%s)", e.D)
}

// Log is a shared timeline for a Driver and a Waiter.
type Log struct {
	mu     sync.Mutex
	Events []Event
}

func (l *Log) add(e Event) {
	l.mu.Lock()
	l.Events = append(l.Events, e)
	l.mu.Unlock()
}

// Waits returns the recorded wait durations in order.
func (l *Log) Waits() []time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []time.Duration
	for _, e := range l.Events {
		if e.Op == Wait {
			out = append(out, e.D)
		}
	}
	return out
}

// Count returns how many events of op were recorded.
func (l *Log) Count(op Op) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// Driver records every call and tracks the live output levels.
type Driver struct {
	Log    *Log
	Count  int
	Closed bool
	// Fail makes every call return this error after recording it.
	Fail error

	levels [actuator.ChannelCount]uint8
}

// NewDriver returns a Driver appending to l (a fresh Log when nil).
func NewDriver(l *Log) *Driver {
	if l == nil {
		l = &Log{}
	}
	return &Driver{Log: l}
}

func (d *Driver) Energize(ch actuator.Channel, strength uint8) error {
	d.Count++
	d.Log.add(Event{Op: On, Channel: ch, Strength: strength})
	if ch.Valid() {
		d.levels[ch] = strength
	}
	return d.Fail
}

func (d *Driver) Release(ch actuator.Channel) error {
	d.Log.add(Event{Op: Off, Channel: ch})
	if ch.Valid() {
		d.levels[ch] = 0
	}
	return d.Fail
}

func (d *Driver) Close() error {
	d.Closed = true
	return nil
}

// Level returns the strength channel ch currently holds (0 when off).
func (d *Driver) Level(ch actuator.Channel) uint8 { return d.levels[ch] }

// Energized lists the channels currently on.
func (d *Driver) Energized() []actuator.Channel {
	var out []actuator.Channel
	for ch, l := range d.levels {
		if l > 0 {
			out = append(out, actuator.Channel(ch))
		}
	}
	return out
}

// Waiter records waits without sleeping.
type Waiter struct {
	Log   *Log
	Total time.Duration
}

// NewWaiter returns a Waiter appending to l (a fresh Log when nil).
func NewWaiter(l *Log) *Waiter {
	if l == nil {
		l = &Log{}
	}
	return &Waiter{Log: l}
}

func (w *Waiter) Wait(ctx context.Context, d time.Duration) error {
	w.Log.add(Event{Op: Wait, D: d})
	w.Total += d
	return ctx.Err()
}
