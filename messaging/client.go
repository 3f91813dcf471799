// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/secret"
	"github.com/bureau-foundation/parley/lib/version"
)

// maxResponseSize bounds response body reads. A full-state sync of a
// large account runs to tens of megabytes.
const maxResponseSize int64 = 256 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// HomeserverURL is the base URL, for example
	// "https://matrix.example.org:443".
	HomeserverURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is an unauthenticated Matrix client: a homeserver URL and an
// HTTP transport, shared by every DirectSession created from it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. Request URLs are built by appending
// already-escaped paths to the base URL, so only its structure is
// validated here.
func NewClient(config ClientConfig) (*Client, error) {
	if config.HomeserverURL == "" {
		return nil, fmt.Errorf("messaging: HomeserverURL is required")
	}
	if _, err := url.Parse(config.HomeserverURL); err != nil {
		return nil, fmt.Errorf("messaging: invalid HomeserverURL %q: %w", config.HomeserverURL, err)
	}

	client := &Client{
		baseURL:    strings.TrimRight(config.HomeserverURL, "/"),
		httpClient: config.HTTPClient,
		logger:     config.Logger,
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	return client, nil
}

// BaseURL returns the homeserver base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CloseIdleConnections drops pooled connections so the next request
// dials fresh.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// SessionFromToken binds an existing access token to this Client. The
// token is copied into locked memory; the caller's string is left to
// the garbage collector.
//
// The token is not checked here: call DirectSession.WhoAmI, or let the
// first sync fail with M_UNKNOWN_TOKEN. lastTransactionID seeds the
// transaction counter so the first write uses lastTransactionID+1.
//
// The caller must Close the returned DirectSession.
func (c *Client) SessionFromToken(userID ref.UserID, accessToken string, lastTransactionID int64) (*DirectSession, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("messaging: access token is required")
	}
	token, err := secret.NewFromString(accessToken)
	if err != nil {
		return nil, fmt.Errorf("messaging: protecting access token: %w", err)
	}
	session := &DirectSession{client: c, accessToken: token, userID: userID}
	session.transactionCounter.Store(lastTransactionID)
	return session, nil
}

// call is one client-server API request. token is nil for
// unauthenticated endpoints; body is JSON-encoded when non-nil.
type call struct {
	method string
	path   string
	query  url.Values
	token  *secret.Buffer
	body   any
}

// do performs request and decodes a 2xx JSON body into response
// (skipped when response is nil). Non-2xx responses with a Matrix
// error body return a *MatrixError.
func (c *Client) do(ctx context.Context, request call, response any) error {
	target := c.baseURL + request.path
	if len(request.query) > 0 {
		target += "?" + request.query.Encode()
	}

	var body io.Reader
	if request.body != nil {
		encoded, err := json.Marshal(request.body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.method, target, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpRequest.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	if request.token != nil {
		httpRequest.Header.Set("Authorization", "Bearer "+request.token.String())
	}

	started := time.Now()
	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return fmt.Errorf("%s %s: %w", request.method, request.path, err)
	}
	defer httpResponse.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", request.method, request.path, err)
	}
	c.logger.Debug("matrix request",
		"method", request.method,
		"path", request.path,
		"status", httpResponse.StatusCode,
		"bytes", len(data),
		"duration", time.Since(started),
	)

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		var matrixErr MatrixError
		if json.Unmarshal(data, &matrixErr) != nil || matrixErr.Code == "" {
			return fmt.Errorf("unexpected %d response from %s %s: %s",
				httpResponse.StatusCode, request.method, request.path, data)
		}
		matrixErr.StatusCode = httpResponse.StatusCode
		return &matrixErr
	}

	if response == nil {
		return nil
	}
	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", request.method, request.path, err)
	}
	return nil
}
