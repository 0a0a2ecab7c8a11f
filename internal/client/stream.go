package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Stream message types.
const (
	EventStage       = "stage"
	EventSummarizing = "summarizing"
	eventResult      = "result"
	eventError       = "error"
)

// StatusEvent is a progress update from a streamed status lookup.
// Stage is set for EventStage and names the resolver state.
type StatusEvent struct {
	Type  string `json:"type"`
	Stage string `json:"stage,omitempty"`
}

type streamMessage struct {
	StatusEvent
	Result *StatusResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// StatusStream resolves a PNR over the server's websocket endpoint and calls
// onEvent for each progress update. Cancelling ctx closes the socket, which
// stops the lookup on the server.
func (c *Client) StatusStream(ctx context.Context, pnr, language string, summarize bool, onEvent func(StatusEvent)) (*StatusResult, error) {
	wsEndpoint := c.baseURL + "/ws/get_pnr_status"
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	var once sync.Once
	closeConn := func() { once.Do(func() { conn.Close() }) }
	defer closeConn()

	if err := conn.WriteJSON(statusRequest{PNR: pnr, Language: language, Summary: summarize}); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case EventStage, EventSummarizing:
			if onEvent != nil {
				onEvent(msg.StatusEvent)
			}
		case eventResult:
			if msg.Result == nil {
				return nil, fmt.Errorf("server error: empty result")
			}
			return msg.Result, nil
		case eventError:
			return nil, fmt.Errorf("server error: %s", msg.Error)
		default:
			continue
		}
	}
}
