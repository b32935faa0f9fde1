package monitor

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Handler serves /ws (cell frames), /diag (diagnostics) and /health.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.HandleFramesWS)
	mux.HandleFunc("/diag", m.HandleDiagWS)
	mux.HandleFunc("/health", m.HandleHealth)
	return mux
}

// HandleFramesWS registers a viewer; the broadcaster sends it the current
// cell right away.
func (m *Monitor) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()
	m.notify()
	go m.drain(conn, false)
}

func (m *Monitor) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.diagClients[conn] = true
	m.mu.Unlock()
	go m.drain(conn, true)
}

// drain reads until the viewer goes away, then forgets it.
func (m *Monitor) drain(conn *websocket.Conn, diag bool) {
	defer func() {
		m.forget(conn, diag)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Monitor) HandleHealth(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	f := m.snapshot()
	resp := map[string]any{
		"frame_id": m.frameID,
		"uptime_s": time.Since(m.startTime).Seconds(),
		"driver":   m.driverName,
		"glyphs":   m.glyphs,
		"cell":     f.Cell,
		"levels":   f.Levels,
		"viewers":  len(m.clients),
	}
	m.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
