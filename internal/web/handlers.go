package web

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cjeanneret/MotionFocus/internal/debug"
	"github.com/cjeanneret/MotionFocus/internal/logic/focus"
)

// FocusService is the part of a running session the handlers drive.
type FocusService interface {
	Trigger() bool
	Status() focus.Status
	Armed() bool
}

// SessionInfo describes the selected camera and tuning, served by GET /config.
type SessionInfo struct {
	CameraID     string  `json:"camera_id"`
	Facing       string  `json:"facing"`
	FocusMode    string  `json:"focus_mode"`
	Threshold    float64 `json:"threshold"`
	RetryDelayMs int     `json:"retry_delay_ms"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status string `json:"status"`
	Armed  bool   `json:"armed"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Focus       FocusService
	Info        SessionInfo
	staticFS    fs.FS
	heartbeat   time.Duration
}

// NewHandlers creates handlers with the given dependencies.
// If svc is nil, POST /focus will return 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, svc FocusService, info SessionInfo, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Focus:       svc,
		Info:        info,
		staticFS:    staticFS,
		heartbeat:   30 * time.Second,
	}
}

// HandleConfig returns the session selection as JSON.
func (h *Handlers) HandleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Info)
}

// HandleStatus returns the current focus status.
func (h *Handlers) HandleStatus(c *gin.Context) {
	if h.Focus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "focus not configured"})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{
		Status: string(h.Focus.Status()),
		Armed:  h.Focus.Armed(),
	})
}

// ServeIndex serves the main HTML page (root path only).
func (h *Handlers) ServeIndex(c *gin.Context) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// HandleFocus handles POST /focus to start a focus cycle by hand.
func (h *Handlers) HandleFocus(c *gin.Context) {
	if h.Focus == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "focus not configured"})
		return
	}
	if !h.Focus.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "focus already in progress"})
		return
	}
	debug.Verbose("focus cycle started from web")
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(c *gin.Context) {
	w := c.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
