// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Server is a homeserver address. Immutable after ParseServer.
type Server struct {
	scheme   string
	hostname string
	port     int
}

// ParseServer parses a server hint: either host[:port], which implies
// https, or an http(s) URL. A missing port defaults to 443 for https
// and 80 for http. Any path in a URL is ignored.
func ParseServer(hint string) (Server, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return Server{}, fmt.Errorf("syncengine: empty server")
	}

	scheme := "https"
	hostport := hint
	if strings.Contains(hint, "://") {
		parsed, err := url.Parse(hint)
		if err != nil {
			return Server{}, fmt.Errorf("syncengine: parsing server %q: %w", hint, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return Server{}, fmt.Errorf("syncengine: server %q: unsupported scheme %q", hint, parsed.Scheme)
		}
		scheme = parsed.Scheme
		hostport = parsed.Host
	}

	hostname, portText, err := net.SplitHostPort(hostport)
	if err != nil {
		// No port: the whole string is the host. Bracketed IPv6
		// literals keep their brackets in hostport and lose them here.
		hostname = strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
		portText = ""
	}
	if hostname == "" {
		return Server{}, fmt.Errorf("syncengine: server %q has no hostname", hint)
	}

	port := 443
	if scheme == "http" {
		port = 80
	}
	if portText != "" {
		port, err = strconv.Atoi(portText)
		if err != nil || port < 1 || port > 65535 {
			return Server{}, fmt.Errorf("syncengine: server %q: invalid port %q", hint, portText)
		}
	}

	return Server{scheme: scheme, hostname: hostname, port: port}, nil
}

// Hostname returns the server's host name or IP literal.
func (s Server) Hostname() string { return s.hostname }

// Port returns the server's port.
func (s Server) Port() int { return s.port }

// Scheme returns "https" or "http".
func (s Server) Scheme() string { return s.scheme }

// IsZero reports whether s is the zero Server.
func (s Server) IsZero() bool { return s.hostname == "" }

// URL returns the base URL of the client-server API.
func (s Server) URL() string {
	return s.scheme + "://" + net.JoinHostPort(s.hostname, strconv.Itoa(s.port))
}

// String returns the server in the form ParseServer reads back: bare
// host:port for https, the full URL for http.
func (s Server) String() string {
	if s.scheme == "http" {
		return s.URL()
	}
	return net.JoinHostPort(s.hostname, strconv.Itoa(s.port))
}
