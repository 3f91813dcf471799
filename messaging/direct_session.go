// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/secret"
)

// DirectSession is an authenticated Matrix session: a Client bound to an
// access token. The token is stored in a secret.Buffer; the caller must
// call Close when the DirectSession is no longer needed.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID

	// transactionCounter holds the last transaction ID handed out.
	transactionCounter atomic.Int64
}

// UserID returns the user ID the token belongs to.
func (s *DirectSession) UserID() ref.UserID {
	return s.userID
}

// AccessToken returns the access token as a heap string. Use only at
// boundaries that need a string, such as writing the session record.
func (s *DirectSession) AccessToken() string {
	return s.accessToken.String()
}

// LastTransactionID returns the most recently issued transaction ID, or
// the seed if no write has been sent yet. Persist this so the next
// process continues the sequence.
func (s *DirectSession) LastTransactionID() int64 {
	return s.transactionCounter.Load()
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool.
func (s *DirectSession) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// Close releases the access token memory (zeros, unlocks, unmaps).
// Idempotent.
func (s *DirectSession) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// WhoAmI validates the access token and returns the user ID it
// belongs to.
func (s *DirectSession) WhoAmI(ctx context.Context) (ref.UserID, error) {
	var response WhoAmIResponse
	request := call{method: http.MethodGet, path: "/_matrix/client/v3/account/whoami", token: s.accessToken}
	if err := s.client.do(ctx, request, &response); err != nil {
		return "", fmt.Errorf("messaging: whoami: %w", err)
	}
	return response.UserID, nil
}

// Sync performs one /sync request. For the initial sync leave
// options.Since empty and set options.FullState. For a long poll, set
// options.Timeout in milliseconds together with SetTimeout.
func (s *DirectSession) Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error) {
	query := url.Values{}
	if options.Since != "" {
		query.Set("since", options.Since)
	}
	if options.FullState {
		query.Set("full_state", "true")
	}
	if options.SetTimeout {
		query.Set("timeout", strconv.Itoa(options.Timeout))
	}
	if options.Filter != "" {
		query.Set("filter", options.Filter)
	}

	var response SyncResponse
	request := call{method: http.MethodGet, path: "/_matrix/client/v3/sync", query: query, token: s.accessToken}
	if err := s.client.do(ctx, request, &response); err != nil {
		return nil, fmt.Errorf("messaging: sync: %w", err)
	}
	return &response, nil
}

// SendMessage sends an m.room.message event and returns the event ID
// the server assigned.
func (s *DirectSession) SendMessage(ctx context.Context, roomID ref.RoomID, content MessageContent) (ref.EventID, error) {
	return s.SendEvent(ctx, roomID, ref.EventTypeMessage, content)
}

// SendEvent sends a timeline event with the idempotent PUT form. The
// path carries the next transaction ID, so a retried request with the
// same ID is deduplicated by the server.
func (s *DirectSession) SendEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, content any) (ref.EventID, error) {
	transactionID := strconv.FormatInt(s.transactionCounter.Add(1), 10)
	path := "/_matrix/client/v3/rooms/" + url.PathEscape(roomID.String()) +
		"/send/" + url.PathEscape(eventType.String()) +
		"/" + transactionID

	var response SendEventResponse
	request := call{method: http.MethodPut, path: path, token: s.accessToken, body: content}
	if err := s.client.do(ctx, request, &response); err != nil {
		return "", fmt.Errorf("messaging: send %s to %s: %w", eventType, roomID, err)
	}
	return response.EventID, nil
}
