// Package client talks to a turtlesoup server over its REST API and keeps a
// local view of a room in sync by polling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"turtlesoup/internal/model"
)

// DefaultPollInterval matches the browser client.
const DefaultPollInterval = 2 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

func (c *Client) Start(ctx context.Context, roomID string) (*model.StartResult, error) {
	var res model.StartResult
	if err := c.post(ctx, "/v1/game/start", map[string]string{"roomId": roomID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Ask(ctx context.Context, roomID, question string) (*model.AskResult, error) {
	var res model.AskResult
	body := map[string]string{"roomId": roomID, "question": question}
	if err := c.post(ctx, "/v1/game/ask", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Status(ctx context.Context, roomID string) (model.Status, error) {
	var st model.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/game/status?roomId="+url.QueryEscape(roomID), nil)
	if err != nil {
		return st, err
	}
	if err := c.do(req, &st); err != nil {
		return st, err
	}
	if st.History == nil {
		st.History = []model.Entry{}
	}
	return st, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return errorFor(resp.StatusCode, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// errorFor maps an error response back onto the shared sentinels.
func errorFor(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		if message == model.ErrMissingRoomID.Error() {
			return model.ErrMissingRoomID
		}
	case http.StatusConflict:
		return model.ErrGameNotStarted
	case http.StatusBadGateway:
		return model.ErrOracleUnavailable
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("server returned %d: %s", status, message)
}

// Synchronizer polls a room's status and hands every successful snapshot to
// OnStatus. Snapshots are complete, so the receiver replaces its view rather
// than merging.
type Synchronizer struct {
	Client   *Client
	RoomID   string
	Interval time.Duration
	OnStatus func(model.Status)
}

// Run polls until ctx is done. Failed polls are logged and retried on the
// next tick.
func (s *Synchronizer) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := s.Client.Status(ctx, s.RoomID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Str("room", s.RoomID).Msg("status poll failed")
		} else {
			s.OnStatus(st)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// View tracks what a terminal has already shown for a room.
type View struct {
	session string
	shown   int
}

// Apply replaces the view with st and returns the entries not shown yet.
// A new session starts over from the first entry.
func (v *View) Apply(st model.Status) []model.Entry {
	if st.SessionID != v.session {
		v.session = st.SessionID
		v.shown = 0
	}
	if len(st.History) <= v.shown {
		return nil
	}
	fresh := st.History[v.shown:]
	v.shown = len(st.History)
	return fresh
}
