// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roomstate

import (
	"fmt"
	"sort"

	"github.com/bureau-foundation/parley/lib/ref"
)

// ResolveName derives a room's display name from its state log:
//
//  1. the name of the most recent m.room.name event, if non-empty;
//  2. otherwise the alias of the most recent m.room.canonical_alias,
//     if non-empty;
//  3. otherwise the room ID.
//
// Only the most recent event of each type counts: a later event with an
// empty or missing value clears an older one rather than uncovering it.
// Each call scans the state log; nothing is cached.
func ResolveName(room *Room) string {
	return NameResolver{}.Resolve(room)
}

// NameResolver computes display names. The zero value implements the
// three-step chain of [ResolveName]. With UseMembers set, a room with
// neither a name nor an alias is named after its other members before
// falling back to the room ID:
//
//	"Alice"                  one other member
//	"Alice and Bob"          two
//	"Alice and 3 others"     more than two
//
// Members are users whose most recent m.room.member event in the state
// log is a join or invite, excluding Self, ordered by user ID and named
// by the displayname of that event (localpart when absent).
type NameResolver struct {
	Self       ref.UserID
	UseMembers bool
}

// Resolve returns the display name of room.
func (n NameResolver) Resolve(room *Room) string {
	var name, alias string
	var nameSeen, aliasSeen bool
	room.ScanState(func(event *Event) bool {
		switch event.Type {
		case ref.EventTypeRoomName:
			if !nameSeen {
				nameSeen = true
				name, _ = RoomName(event)
			}
		case ref.EventTypeCanonicalAlias:
			if !aliasSeen {
				aliasSeen = true
				alias, _ = CanonicalAlias(event)
			}
		}
		return !nameSeen || !aliasSeen
	})
	if name != "" {
		return name
	}
	if alias != "" {
		return alias
	}

	if n.UseMembers {
		if heroes := n.heroes(room); heroes != "" {
			return heroes
		}
	}
	return room.ID().String()
}

type hero struct {
	id   ref.UserID
	name string
}

func (n NameResolver) heroes(room *Room) string {
	seen := make(map[ref.UserID]bool)
	var members []hero
	room.ScanState(func(event *Event) bool {
		target, content, ok := Membership(event)
		if !ok || seen[target] {
			return true
		}
		seen[target] = true
		if target == n.Self {
			return true
		}
		if content.Membership != MembershipJoin && content.Membership != MembershipInvite {
			return true
		}
		name := content.DisplayName
		if name == "" {
			name = target.Localpart()
		}
		members = append(members, hero{id: target, name: name})
		return true
	})

	sort.Slice(members, func(i, j int) bool { return members[i].id < members[j].id })

	switch len(members) {
	case 0:
		return ""
	case 1:
		return members[0].name
	case 2:
		return fmt.Sprintf("%s and %s", members[0].name, members[1].name)
	default:
		return fmt.Sprintf("%s and %d others", members[0].name, len(members)-1)
	}
}
