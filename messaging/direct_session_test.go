// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestWhoAmI(t *testing.T) {
	_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, "test-token")
		if request.URL.Path != "/_matrix/client/v3/account/whoami" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if !strings.HasPrefix(request.Header.Get("User-Agent"), "parley/") {
			t.Errorf("unexpected User-Agent: %q", request.Header.Get("User-Agent"))
		}
		writeJSON(writer, WhoAmIResponse{UserID: "@test:local", DeviceID: "DEV1"})
	}))

	userID, err := session.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if userID != "@test:local" {
		t.Errorf("unexpected user ID: %s", userID)
	}
}

func TestSync(t *testing.T) {
	t.Run("incremental", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assertAuth(t, request, "test-token")
			if request.URL.Path != "/_matrix/client/v3/sync" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}

			query := request.URL.Query()
			if query.Get("since") != "s123" {
				t.Errorf("unexpected since token: %s", query.Get("since"))
			}
			if query.Has("full_state") {
				t.Errorf("full_state should be absent, got %q", query.Get("full_state"))
			}
			if query.Get("timeout") != "0" {
				t.Errorf("unexpected timeout: %s", query.Get("timeout"))
			}

			writer.Header().Set("Content-Type", "application/json")
			writer.Write([]byte(`{
				"next_batch": "s456",
				"rooms": {"join": {"!room1:local": {
					"state": {"events": []},
					"timeline": {"events": [{
						"event_id": "$evt1",
						"type": "m.room.message",
						"sender": "@alice:local",
						"origin_server_ts": 1700000000000,
						"content": {"msgtype": "m.text", "body": "hi"},
						"unsigned": {"age": 42}
					}]}
				}}},
				"account_data": {"events": []},
				"device_lists": {"changed": []}
			}`))
		}))

		response, err := session.Sync(context.Background(), SyncOptions{
			Since:      "s123",
			Timeout:    0,
			SetTimeout: true,
		})
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if response.NextBatch != "s456" {
			t.Errorf("unexpected next_batch: %s", response.NextBatch)
		}
		room, ok := response.Rooms.Join["!room1:local"]
		if !ok {
			t.Fatal("expected room !room1:local in sync response")
		}
		if room.EventCount() != 1 {
			t.Fatalf("expected 1 event, got %d", room.EventCount())
		}
		event := room.Timeline.Events[0]
		if event.EventID != "$evt1" || event.Sender != "@alice:local" || event.OriginServerTS != 1700000000000 {
			t.Errorf("unexpected event: %+v", event)
		}
		if event.Content["body"] != "hi" {
			t.Errorf("unexpected content: %v", event.Content)
		}
		if string(event.Unsigned) != `{"age": 42}` {
			t.Errorf("unsigned not preserved verbatim: %s", event.Unsigned)
		}
	})

	t.Run("initial full state", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			query := request.URL.Query()
			if query.Has("since") {
				t.Errorf("since should be absent, got %q", query.Get("since"))
			}
			if query.Get("full_state") != "true" {
				t.Errorf("full_state = %q, want true", query.Get("full_state"))
			}
			if query.Has("timeout") {
				t.Error("timeout should be absent when SetTimeout is false")
			}
			if query.Get("filter") != `{"room":{}}` {
				t.Errorf("unexpected filter: %s", query.Get("filter"))
			}
			writeJSON(writer, SyncResponse{NextBatch: "s1"})
		}))

		response, err := session.Sync(context.Background(), SyncOptions{
			FullState: true,
			Filter:    `{"room":{}}`,
		})
		if err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
		if response.NextBatch != "s1" {
			t.Errorf("unexpected next_batch: %s", response.NextBatch)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.Write([]byte("{not json"))
		}))
		if _, err := session.Sync(context.Background(), SyncOptions{}); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestSendMessageTransactionIDs(t *testing.T) {
	var paths []string
	server := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, "test-token")
		if request.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", request.Method)
		}
		paths = append(paths, request.URL.EscapedPath())

		var content MessageContent
		if err := json.NewDecoder(request.Body).Decode(&content); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if content.MsgType != "m.text" || content.Body != "hello" {
			t.Errorf("unexpected content: %+v", content)
		}
		writeJSON(writer, SendEventResponse{EventID: "$sent"})
	})

	client, _ := newTestSession(t, server)
	session, err := client.SessionFromToken("@test:local", "test-token", 41)
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}
	defer session.Close()

	for range 2 {
		eventID, err := session.SendMessage(context.Background(), "!room1:local", NewTextMessage("hello"))
		if err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		if eventID != "$sent" {
			t.Errorf("unexpected event ID: %s", eventID)
		}
	}

	want := []string{
		"/_matrix/client/v3/rooms/%21room1:local/send/m.room.message/42",
		"/_matrix/client/v3/rooms/%21room1:local/send/m.room.message/43",
	}
	if strings.Join(paths, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected request paths:\n got %v\nwant %v", paths, want)
	}
	if session.LastTransactionID() != 43 {
		t.Errorf("LastTransactionID() = %d, want 43", session.LastTransactionID())
	}
}
