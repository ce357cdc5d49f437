package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultURL is where `chartnote serve` listens by default.
const DefaultURL = "http://localhost:8080"

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to a chartnote API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: http.DefaultClient}
}

// Patients lists the roster, filtered by query when non-empty.
func (c *Client) Patients(ctx context.Context, query string) (RosterResponse, error) {
	path := "/patients"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var resp RosterResponse
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp, err
}

// OpenSession opens (or returns) the patient's consultation.
func (c *Client) OpenSession(ctx context.Context, patientID string) (SessionView, error) {
	var v SessionView
	err := c.do(ctx, http.MethodPost, sessionPath(patientID), nil, &v)
	return v, err
}

// Session fetches the patient's consultation. With wait it returns once the
// session has nothing pending.
func (c *Client) Session(ctx context.Context, patientID string, wait bool) (SessionView, error) {
	path := sessionPath(patientID)
	if wait {
		path += "?wait=true"
	}
	var v SessionView
	err := c.do(ctx, http.MethodGet, path, nil, &v)
	return v, err
}

// Intent applies one of the Intent* constants. text is only used by save.
func (c *Client) Intent(ctx context.Context, patientID, intent, text string) (SessionView, error) {
	var v SessionView
	err := c.do(ctx, http.MethodPost, sessionPath(patientID)+"/"+intent, IntentRequest{Text: text}, &v)
	return v, err
}

// CloseSession discards the patient's consultation.
func (c *Client) CloseSession(ctx context.Context, patientID string) error {
	return c.do(ctx, http.MethodDelete, sessionPath(patientID), nil, nil)
}

func sessionPath(patientID string) string {
	return "/patients/" + url.PathEscape(patientID) + "/session"
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeStatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	var er ErrorResponse
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &er); err != nil || er.Error == "" {
		er.Error = strings.TrimSpace(string(data))
	}
	return &StatusError{Status: resp.StatusCode, Message: er.Error}
}

// EventStream reads session views from the NDJSON event stream.
type EventStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Events subscribes to the patient's session changes. The first event is the
// current view. Cancel ctx or call Close to stop.
func (c *Client) Events(ctx context.Context, patientID string) (*EventStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sessionPath(patientID)+"/events", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to server: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeStatusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	return &EventStream{body: resp.Body, scanner: scanner}, nil
}

// ReadEvent reads the next NDJSON event line. Blocks until data arrives.
func (s *EventStream) ReadEvent() (SessionView, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return SessionView{}, fmt.Errorf("read event: %w", err)
		}
		return SessionView{}, io.EOF
	}

	var v SessionView
	if err := json.Unmarshal(s.scanner.Bytes(), &v); err != nil {
		return SessionView{}, fmt.Errorf("unmarshal event: %w", err)
	}

	return v, nil
}

// Close ends the stream.
func (s *EventStream) Close() error {
	return s.body.Close()
}
