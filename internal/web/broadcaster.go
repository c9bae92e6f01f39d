package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cjeanneret/MotionFocus/internal/logic/focus"
)

// LevelStatus marks events that carry a focus status change.
const LevelStatus = "status"

// StatusEvent represents a single status message for SSE.
type StatusEvent struct {
	Time    string `json:"t"`
	Level   string `json:"l,omitempty"`
	Msg     string `json:"msg"`
	Status  string `json:"status,omitempty"`
	Cycle   string `json:"cycle,omitempty"`
	Attempt int    `json:"attempt,omitempty"`
}

// StatusBroadcaster distributes status messages to multiple SSE clients.
// It is also the session's status sink for the web page.
type StatusBroadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewStatusBroadcaster creates a new broadcaster.
func NewStatusBroadcaster() *StatusBroadcaster {
	return &StatusBroadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast messages and a cleanup function.
// The caller must call the returned cleanup when done (e.g. on client disconnect).
func (b *StatusBroadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

// Broadcast sends a message to all subscribed clients.
// Messages are sent as JSON: {"t":"...","l":"info","msg":"..."}
func (b *StatusBroadcaster) Broadcast(level, msg string) {
	b.send(StatusEvent{
		Time:  time.Now().Format(time.RFC3339),
		Level: level,
		Msg:   msg,
	})
}

// BroadcastMsg is a convenience for level "info".
func (b *StatusBroadcaster) BroadcastMsg(msg string) {
	b.Broadcast("info", msg)
}

// Publish broadcasts a focus status change. It never blocks.
func (b *StatusBroadcaster) Publish(ev focus.Event) {
	b.send(StatusEvent{
		Time:    ev.Time.Format(time.RFC3339),
		Level:   LevelStatus,
		Msg:     "Autofocus : " + string(ev.Status),
		Status:  string(ev.Status),
		Cycle:   ev.Cycle,
		Attempt: ev.Attempt,
	})
}

// send fans evt out. Slow clients miss messages (non-blocking, buffered).
func (b *StatusBroadcaster) send(evt StatusEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// BroadcastWriter implements io.Writer; each Write broadcasts the content to SSE clients.
func BroadcastWriter(b *StatusBroadcaster) *broadcastWriter {
	return &broadcastWriter{b: b}
}

// broadcastWriter wraps StatusBroadcaster as io.Writer for use as a log output.
type broadcastWriter struct {
	b *StatusBroadcaster
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.b.BroadcastMsg(msg)
	}
	return len(p), nil
}
