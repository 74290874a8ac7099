// internal/client/client.go
//
// Formdesk - HTTP API client.
//
// Context
//   Client speaks the /form JSON API on behalf of one auth.Session.  The
//   builder and fill-in state machines depend on the narrow Saver and
//   Submitter interfaces; this type implements both.
//
// Notes
//   •  Every non-2xx reply becomes an *APIError carrying the server's
//      message(s), whichever envelope ({message} or {error}) it used.
//   •  The session is passed in explicitly; nothing reads a token from the
//      environment.
//
//------------------------------------------------------------------------------

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanizio/formdesk/internal/auth"
	"github.com/yanizio/formdesk/internal/form"
)

// DefaultTimeout bounds a single round trip when no *http.Client is given.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx reply.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("formdesk: HTTP %d", e.Status)
	}
	return fmt.Sprintf("formdesk: HTTP %d: %s", e.Status, strings.Join(e.Messages, "; "))
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	session auth.Session
	http    *http.Client
	agent   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Client) { c.agent = ua } }

// New returns a client rooted at baseURL.
func New(baseURL string, s auth.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:    u,
		session: s,
		http:    &http.Client{Timeout: DefaultTimeout},
		agent:   "formdesk-client/1",
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

/*──────────────────────────── endpoints ────────────────────────────────────*/

// ListForms returns the session owner's forms.
func (c *Client) ListForms(ctx context.Context) ([]form.Form, error) {
	var out []form.Form
	if err := c.do(ctx, http.MethodGet, "/form/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type formReply struct {
	Message string     `json:"message"`
	Form    *form.Form `json:"form"`
}

// CreateForm stores a new form.
func (c *Client) CreateForm(ctx context.Context, d form.Draft) (*form.Form, error) {
	var out formReply
	if err := c.do(ctx, http.MethodPost, "/form/create", d, &out); err != nil {
		return nil, err
	}
	return out.Form, nil
}

// UpdateForm replaces the name and fields of form id.
func (c *Client) UpdateForm(ctx context.Context, id form.ID, d form.Draft) (*form.Form, error) {
	var out formReply
	if err := c.do(ctx, http.MethodPut, "/form/edit/"+id.String(), d, &out); err != nil {
		return nil, err
	}
	return out.Form, nil
}

// DeleteForm removes form id and returns what was deleted.
func (c *Client) DeleteForm(ctx context.Context, id form.ID) (*form.Form, error) {
	var out formReply
	if err := c.do(ctx, http.MethodDelete, "/form/delete/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Form, nil
}

// SubmitResponse posts one answer set.
func (c *Client) SubmitResponse(ctx context.Context, req form.SubmitRequest) (*form.Response, error) {
	var out struct {
		Message string         `json:"message"`
		Data    *form.Response `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/form/response/"+req.FormID.String(), req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

/*──────────────────────────── transport ────────────────────────────────────*/

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}
	c.session.Authorize(req)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	if res.StatusCode/100 != 2 {
		return &APIError{Status: res.StatusCode, Messages: parseMessages(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// parseMessages reads {message: s} or {error: s | [s...]}.
func parseMessages(raw []byte) []string {
	var env struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &env) != nil {
		if s := strings.TrimSpace(string(raw)); s != "" {
			return []string{s}
		}
		return nil
	}
	if env.Message != "" {
		return []string{env.Message}
	}
	if len(env.Error) == 0 {
		return nil
	}
	var one string
	if json.Unmarshal(env.Error, &one) == nil {
		return []string{one}
	}
	var many []string
	if json.Unmarshal(env.Error, &many) == nil {
		return many
	}
	return nil
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}
