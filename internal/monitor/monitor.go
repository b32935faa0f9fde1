package monitor

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	"github.com/coreman2200/funtimes-braillecell/internal/braille"
	diag "github.com/coreman2200/funtimes-braillecell/internal/diagnostics"
	"github.com/coreman2200/funtimes-braillecell/internal/sequence"
)

// diagQueue bounds diagnostics waiting for viewers; extra ones are dropped.
const diagQueue = 32

const writeWait = 200 * time.Millisecond

// Monitor wraps the real driver, mirrors the live cell state and streams it
// to websocket viewers. Hardware calls pass straight through; only the
// broadcast goroutine writes to viewers, so a stalled viewer never delays
// the cell.
type Monitor struct {
	mu         sync.Mutex
	inner      actuator.Driver
	driverName string
	log        zerolog.Logger

	levels    [actuator.ChannelCount]uint8
	frameID   uint64
	glyphs    uint64
	char      rune
	startTime time.Time

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	dirty     chan struct{} // coalesced "state changed" signal
	diags     chan []byte
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(inner actuator.Driver, driverName string, log zerolog.Logger) *Monitor {
	m := &Monitor{
		inner:       inner,
		driverName:  driverName,
		log:         log.With().Str("component", "monitor").Logger(),
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		dirty:       make(chan struct{}, 1),
		diags:       make(chan []byte, diagQueue),
		done:        make(chan struct{}),
	}
	m.wg.Add(1)
	go m.broadcast()
	return m
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Levels  []int  `json:"levels"`
	Cell    string `json:"cell"`
	Char    string `json:"char,omitempty"`
}

func (m *Monitor) Energize(ch actuator.Channel, strength uint8) error {
	err := m.inner.Energize(ch, strength)
	m.set(ch, strength)
	return err
}

func (m *Monitor) Release(ch actuator.Channel) error {
	err := m.inner.Release(ch)
	m.set(ch, 0)
	return err
}

func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		m.mu.Lock()
		for c := range m.clients {
			c.Close()
		}
		for c := range m.diagClients {
			c.Close()
		}
		m.clients = map[*websocket.Conn]bool{}
		m.diagClients = map[*websocket.Conn]bool{}
		m.mu.Unlock()
	})
	return m.inner.Close()
}

// Hooks lets the monitor follow which character is on the cell.
func (m *Monitor) Hooks() sequence.Hooks {
	return sequence.Hooks{
		OnGlyph: func(g braille.Glyph) {
			m.mu.Lock()
			m.char = g.Char
			m.glyphs++
			m.mu.Unlock()
		},
	}
}

// Push queues a diagnostic for every /diag viewer. It never blocks.
func (m *Monitor) Push(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	select {
	case m.diags <- b:
	default:
		m.log.Debug().Str("code", d.Code).Msg("diag dropped, queue full")
	}
}

// Levels returns the mirrored channel levels.
func (m *Monitor) Levels() [actuator.ChannelCount]uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels
}

func (m *Monitor) set(ch actuator.Channel, level uint8) {
	if !ch.Valid() {
		return
	}
	m.mu.Lock()
	changed := m.levels[ch] != level
	if changed {
		m.levels[ch] = level
		m.frameID++
	}
	m.mu.Unlock()
	if changed {
		m.notify()
	}
}

func (m *Monitor) notify() {
	select {
	case m.dirty <- struct{}{}:
	default:
	}
}

// snapshot must be called with mu held.
func (m *Monitor) snapshot() frame {
	f := frame{T: time.Now().UnixNano(), FrameID: m.frameID, Levels: make([]int, len(m.levels))}
	var cell strings.Builder
	for i, l := range m.levels {
		f.Levels[i] = int(l)
		if l > 0 {
			cell.WriteByte('o')
		} else {
			cell.WriteByte('.')
		}
	}
	f.Cell = cell.String()
	if m.char != 0 {
		f.Char = string(m.char)
	}
	return f
}

// broadcast is the only writer to viewer connections.
func (m *Monitor) broadcast() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case <-m.dirty:
			m.mu.Lock()
			if len(m.clients) == 0 {
				m.mu.Unlock()
				continue
			}
			b, _ := json.Marshal(m.snapshot())
			conns := viewers(m.clients)
			m.mu.Unlock()
			m.writeAll(conns, b, false)
		case b := <-m.diags:
			m.mu.Lock()
			conns := viewers(m.diagClients)
			m.mu.Unlock()
			m.writeAll(conns, b, true)
		}
	}
}

// writeAll drops a viewer on its first failed write.
func (m *Monitor) writeAll(conns []*websocket.Conn, b []byte, diag bool) {
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			m.log.Debug().Err(err).Bool("diag", diag).Msg("viewer dropped")
			m.forget(c, diag)
			c.Close()
		}
	}
}

func (m *Monitor) forget(c *websocket.Conn, diag bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if diag {
		delete(m.diagClients, c)
	} else {
		delete(m.clients, c)
	}
}

func viewers(set map[*websocket.Conn]bool) []*websocket.Conn {
	out := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
