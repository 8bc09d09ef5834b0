package sdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

// Sentinel errors for the two HTTP statuses the client must tell apart:
// 401 destroys the session, 403 only surfaces a denial.
var (
	ErrUnauthorized = errors.New("session expired or invalid")
	ErrForbidden    = errors.New("permission denied")
)

// StatusError is returned for any non-2xx backend response. It carries the
// backend-supplied message when the body held a JSON envelope.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.Code)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	}
	return false
}

// Client talks to the SysPilot backend. The session rides on the backend's
// HTTP-only cookie, held in the client's jar; bearer tokens are never mixed
// in.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: defaultHTTPTimeout,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ClearSession drops the session cookie so a dead session can't leak into a
// later login.
func (c *Client) ClearSession() {
	jar, _ := cookiejar.New(nil)
	c.httpClient.Jar = jar
}

func (c *Client) do(method, path string, body interface{}, target interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: envelopeMessage(raw)}
	}

	if target != nil {
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(path string, target interface{}) error {
	return c.do(http.MethodGet, path, nil, target)
}

func (c *Client) post(path string, body interface{}, target interface{}) error {
	return c.do(http.MethodPost, path, body, target)
}

func (c *Client) put(path string, body interface{}, target interface{}) error {
	return c.do(http.MethodPut, path, body, target)
}

func (c *Client) delete(path string, target interface{}) error {
	return c.do(http.MethodDelete, path, nil, target)
}

// envelopeMessage extracts the message from an error-status body. The
// backend sends JSON envelopes on 4xx; anything else is used verbatim.
func envelopeMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	msg := strings.TrimSpace(string(raw))
	if json.Valid(raw) {
		return ""
	}
	return msg
}
