// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// fakeHomeserver serves queued /sync bodies in order and records every
// sync query. Once the queue is empty, /sync fails with M_UNKNOWN.
// whoami reports the token as owned by owner, "@a:x" unless changed.
type fakeHomeserver struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	owner     string
	responses []string
	queries   []url.Values
	sent      []string
}

func newFakeHomeserver(t *testing.T, responses ...string) *fakeHomeserver {
	t.Helper()
	homeserver := &fakeHomeserver{t: t, responses: responses, owner: "@a:x"}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /_matrix/client/v3/account/whoami", homeserver.handleWhoAmI)
	mux.HandleFunc("GET /_matrix/client/v3/sync", homeserver.handleSync)
	mux.HandleFunc("PUT /_matrix/client/v3/rooms/{room}/send/{type}/{txn}", homeserver.handleSend)
	homeserver.server = httptest.NewServer(mux)
	t.Cleanup(homeserver.server.Close)
	return homeserver
}

func (h *fakeHomeserver) handleWhoAmI(writer http.ResponseWriter, request *http.Request) {
	if got := request.Header.Get("Authorization"); got != "Bearer test-token" {
		h.t.Errorf("unexpected Authorization header: %q", got)
	}
	h.mu.Lock()
	owner := h.owner
	h.mu.Unlock()
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(map[string]string{"user_id": owner})
}

func (h *fakeHomeserver) setOwner(owner string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.owner = owner
}

func (h *fakeHomeserver) handleSync(writer http.ResponseWriter, request *http.Request) {
	if got := request.Header.Get("Authorization"); got != "Bearer test-token" {
		h.t.Errorf("unexpected Authorization header: %q", got)
	}

	h.mu.Lock()
	h.queries = append(h.queries, request.URL.Query())
	var body string
	ok := len(h.responses) > 0
	if ok {
		body = h.responses[0]
		h.responses = h.responses[1:]
	}
	h.mu.Unlock()

	writer.Header().Set("Content-Type", "application/json")
	if !ok {
		writer.WriteHeader(http.StatusInternalServerError)
		writer.Write([]byte(`{"errcode":"M_UNKNOWN","error":"no more responses"}`))
		return
	}
	writer.Write([]byte(body))
}

func (h *fakeHomeserver) handleSend(writer http.ResponseWriter, request *http.Request) {
	h.mu.Lock()
	h.sent = append(h.sent, request.PathValue("room")+" "+request.PathValue("txn"))
	h.mu.Unlock()
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(map[string]string{"event_id": "$sent" + request.PathValue("txn")})
}

func (h *fakeHomeserver) syncQueries() []url.Values {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]url.Values(nil), h.queries...)
}

func (h *fakeHomeserver) credentials(t *testing.T) Credentials {
	t.Helper()
	server, err := ParseServer(h.server.URL)
	if err != nil {
		t.Fatalf("ParseServer(%q): %v", h.server.URL, err)
	}
	return Credentials{UserID: "@a:x", Server: server, Token: "test-token"}
}

func newTestManager(t *testing.T, config ManagerConfig) *Manager {
	t.Helper()
	manager := NewManager(config)
	t.Cleanup(func() { manager.Close() })
	return manager
}

const lobbyResponse = `{
	"next_batch": "s1",
	"rooms": {"join": {"!r1": {
		"state": {"events": [{
			"event_id": "s1",
			"type": "m.room.name",
			"content": {"name": "Lobby"},
			"sender": "@a:x",
			"origin_server_ts": 1,
			"state_key": ""
		}]},
		"timeline": {"events": []}
	}}}
}`
