// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import "github.com/bureau-foundation/parley/lib/ref"

// Membership values of m.room.member content.
const (
	MembershipJoin   = "join"
	MembershipInvite = "invite"
	MembershipLeave  = "leave"
	MembershipBan    = "ban"
	MembershipKnock  = "knock"
)

// MemberContent is the content of an m.room.member state event.
type MemberContent struct {
	Membership  string `json:"membership"`
	DisplayName string `json:"displayname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// RoomName returns the name from an m.room.name event. ok is false for
// any other event type or when the name field is missing.
func RoomName(event *Event) (name string, ok bool) {
	if event.Type != ref.EventTypeRoomName {
		return "", false
	}
	return event.ContentString("name")
}

// CanonicalAlias returns the alias from an m.room.canonical_alias event.
func CanonicalAlias(event *Event) (alias string, ok bool) {
	if event.Type != ref.EventTypeCanonicalAlias {
		return "", false
	}
	return event.ContentString("alias")
}

// Membership returns the target user and content of an m.room.member
// event. The target is the state key, not the sender: a user inviting
// another is the sender of the invitee's member event.
func Membership(event *Event) (target ref.UserID, content MemberContent, ok bool) {
	if event.Type != ref.EventTypeMember || event.StateKey == nil {
		return "", MemberContent{}, false
	}
	content.Membership, _ = event.ContentString("membership")
	content.DisplayName, _ = event.ContentString("displayname")
	content.AvatarURL, _ = event.ContentString("avatar_url")
	return ref.UserID(*event.StateKey), content, true
}

// MessageBody returns the body of an m.room.message event.
func MessageBody(event *Event) (body string, ok bool) {
	if event.Type != ref.EventTypeMessage {
		return "", false
	}
	return event.ContentString("body")
}
