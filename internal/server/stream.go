package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/raphaelgruber/railvoice/internal/resolver"
)

// Stream message types sent on /ws/get_pnr_status.
const (
	streamStage       = "stage"
	streamSummarizing = "summarizing"
	streamResult      = "result"
	streamError       = "error"
)

const (
	streamRequestWait = 10 * time.Second
	streamWriteWait   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as the CORS middleware
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// streamRequest is the first and only message a client sends.
type streamRequest struct {
	PNR      string `json:"pnr"`
	Language string `json:"language"`
	Summary  *bool  `json:"summary,omitempty"`
}

// streamMessage is sent for every resolver transition, once before
// summarizing, and once at the end with either a result or an error.
type streamMessage struct {
	Type   string          `json:"type"`
	Stage  resolver.Stage  `json:"stage,omitempty"`
	Result *statusResponse `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleStatusStream resolves a PNR over a websocket, streaming progress.
// Closing the socket cancels the lookup.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req streamRequest
	_ = conn.SetReadDeadline(time.Now().Add(streamRequestWait))
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Debug("no stream request received", "error", err)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing more; reading only surfaces its close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(m streamMessage) {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(m); err != nil {
			s.logger.Debug("stream write failed", "type", m.Type, "error", err)
			cancel()
		}
	}

	report, err := s.agent.Lookup(ctx, req.PNR, req.Language, summarize(req.Summary),
		func() { send(streamMessage{Type: streamSummarizing}) },
		resolver.Observe(func(e resolver.Event) {
			send(streamMessage{Type: streamStage, Stage: e.Stage})
		}))
	switch {
	case errors.Is(err, models.ErrInvalidPNR):
		send(streamMessage{Type: streamError, Error: msgInvalidPNR})
	case err != nil:
		s.logger.Warn("pnr status not found", "pnr", strings.TrimSpace(req.PNR), "error", err)
		send(streamMessage{Type: streamError, Error: msgStatusNotFound})
	default:
		resp := newStatusResponse(report)
		send(streamMessage{Type: streamResult, Result: &resp})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// summarize defaults an omitted summary flag to true.
func summarize(flag *bool) bool {
	return flag == nil || *flag
}
