// Package client talks to the community server over HTTP and the live feed
// websocket. It implements the sources roomview needs.
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
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	pkgerrors "github.com/pkg/errors"

	"github.com/mapleins/community/internal/roomview"
)

const tokenCookie = "token"

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets a 404 match roomview.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == roomview.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StatusCode extracts the HTTP status from err, 0 when there is none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

type Client struct {
	BaseURL    *url.URL
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "parse base url")
	}

	return &Client{
		BaseURL: u,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}, nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) buildURL(endpoint string, queryParams interface{}) (string, error) {
	rel, err := url.Parse(endpoint)
	if err != nil {
		return "", pkgerrors.Wrap(err, "parse endpoint")
	}
	u := c.BaseURL.ResolveReference(rel)

	if queryParams != nil {
		v, err := query.Values(queryParams)
		if err != nil {
			return "", pkgerrors.Wrap(err, "encode query parameters")
		}
		u.RawQuery = v.Encode()
	}

	return u.String(), nil
}

// do sends one request and decodes a JSON answer into out when given. The
// session cookie handed back by the server replaces the stored token.
func (c *Client) do(ctx context.Context, method, endpoint string, params, body, out interface{}) error {
	reqURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return pkgerrors.Wrapf(err, "create %s %s request", method, endpoint)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "execute %s %s", method, endpoint)
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == tokenCookie {
			c.SetToken(ck.Value)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) != nil {
			apiErr.Message = string(bytes.TrimSpace(raw))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrapf(err, "decode %s %s response", method, endpoint)
	}
	return nil
}
