// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/parley/lib/roomstate"
	"github.com/bureau-foundation/parley/lib/syncengine"
)

// renderOptions controls the room listing.
type renderOptions struct {
	// Width bounds each line in cells. Zero means 100.
	Width int
	// NoColor forces the plain ASCII profile.
	NoColor bool
}

const defaultRenderWidth = 100

// renderRooms writes one line per room: display name, room ID, state
// and timeline counts, and the most recent message. Names and messages
// are truncated to fit the width.
func renderRooms(output io.Writer, views []syncengine.RoomView, options renderOptions) error {
	renderer := lipgloss.NewRenderer(output)
	if options.NoColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	width := options.Width
	if width <= 0 {
		width = defaultRenderWidth
	}

	if len(views) == 0 {
		_, err := fmt.Fprintln(output, renderer.NewStyle().Faint(true).Render("no joined rooms"))
		return err
	}

	nameWidth, idWidth := 4, 2
	for _, view := range views {
		nameWidth = max(nameWidth, ansi.StringWidth(view.DisplayName))
		idWidth = max(idWidth, ansi.StringWidth(view.ID.String()))
	}
	nameWidth = min(nameWidth, width/3)
	idWidth = min(idWidth, width/3)
	const countWidth = 6
	latestWidth := max(width-nameWidth-idWidth-2*countWidth-4, 8)

	header := renderer.NewStyle().Bold(true)
	nameStyle := renderer.NewStyle().Width(nameWidth).Foreground(lipgloss.Color("12"))
	idStyle := renderer.NewStyle().Width(idWidth).Faint(true)
	countStyle := renderer.NewStyle().Width(countWidth).Align(lipgloss.Right)

	lines := []string{header.Render(strings.Join([]string{
		pad("NAME", nameWidth), pad("ID", idWidth),
		padLeft("STATE", countWidth), padLeft("EVENTS", countWidth), "LATEST",
	}, " "))}
	for _, view := range views {
		lines = append(lines, strings.Join([]string{
			nameStyle.Render(ansi.Truncate(view.DisplayName, nameWidth, "…")),
			idStyle.Render(ansi.Truncate(view.ID.String(), idWidth, "…")),
			countStyle.Render(strconv.Itoa(len(view.StateEvents))),
			countStyle.Render(strconv.Itoa(len(view.TimelineEvents))),
			ansi.Truncate(latestMessage(view), latestWidth, "…"),
		}, " "))
	}

	_, err := fmt.Fprintln(output, strings.Join(lines, "\n"))
	return err
}

// latestMessage returns "sender: body" for the newest m.room.message
// in the timeline, or "" when there is none.
func latestMessage(view syncengine.RoomView) string {
	for _, event := range view.TimelineEvents {
		body, ok := roomstate.MessageBody(event)
		if !ok {
			continue
		}
		body = strings.Join(strings.Fields(body), " ")
		return event.Sender.Name(view.ID) + ": " + body
	}
	return ""
}

func pad(text string, width int) string {
	return text + strings.Repeat(" ", max(width-ansi.StringWidth(text), 0))
}

func padLeft(text string, width int) string {
	return strings.Repeat(" ", max(width-ansi.StringWidth(text), 0)) + text
}
