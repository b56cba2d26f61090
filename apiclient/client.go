// Package apiclient talks to the store REST API on behalf of a logged-in admin.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"agroadmin/models"
	"agroadmin/session"
)

// Client issues requests against a single base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type callConfig struct {
	timeout time.Duration
}

// CallOption tweaks a single call.
type CallOption func(*callConfig)

// WithTimeout bounds one call. Calls have no deadline otherwise.
func WithTimeout(d time.Duration) CallOption {
	return func(cc *callConfig) { cc.timeout = d }
}

// Field is a plain multipart form value.
type Field struct {
	Name  string
	Value string
}

// Do sends an authenticated JSON request. body may be nil.
func (c *Client) Do(ctx context.Context, sess *session.Session, method, path string, body any, opts ...CallOption) (json.RawMessage, error) {
	if sess == nil || sess.Token == "" {
		return nil, &Error{Kind: KindAuth, Message: msgAuth, Err: ErrNoToken}
	}
	return c.send(ctx, sess.Token, method, path, body, opts)
}

// Public sends an unauthenticated JSON request (login, signup, password reset).
func (c *Client) Public(ctx context.Context, method, path string, body any, opts ...CallOption) (json.RawMessage, error) {
	return c.send(ctx, "", method, path, body, opts)
}

func (c *Client) send(ctx context.Context, token, method, path string, body any, opts []CallOption) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	return c.roundTrip(ctx, token, method, path, rd, "application/json", opts)
}

// Multipart sends fields and files as multipart/form-data. Every file is sent under the
// "images" part name.
func (c *Client) Multipart(ctx context.Context, sess *session.Session, method, path string, fields []Field, files []models.Upload, opts ...CallOption) (json.RawMessage, error) {
	if sess == nil || sess.Token == "" {
		return nil, &Error{Kind: KindAuth, Message: msgAuth, Err: ErrNoToken}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return c.roundTrip(ctx, sess.Token, method, path, &buf, mw.FormDataContentType(), opts)
}

func (c *Client) roundTrip(ctx context.Context, token, method, path string, body io.Reader, contentType string, opts []CallOption) (json.RawMessage, error) {
	cc := callConfig{}
	for _, opt := range opts {
		opt(&cc)
	}
	if cc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cc.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[apiclient] %s %s failed after %v: %v", method, path, time.Since(start), err)
		msg := msgNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			msg = msgTimeout
		}
		return nil, &Error{Kind: KindNetwork, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: msgNetwork, Err: err}
	}
	log.Printf("[apiclient] %s %s -> %d (%v)", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, serverMessage(data))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}

// serverMessage pulls a human readable message out of an error body, if there is one.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Msg != "":
		return body.Msg
	default:
		return body.Error
	}
}
