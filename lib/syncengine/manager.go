// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package syncengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/roomstate"
	"github.com/bureau-foundation/parley/lib/sessionstore"
	"github.com/bureau-foundation/parley/lib/userregistry"
	"github.com/bureau-foundation/parley/messaging"
)

// ErrUnknownRoom is returned by Manager.ViewRoom for a room the active
// session has not seen.
var ErrUnknownRoom = errors.New("syncengine: unknown room")

// Credentials identify an existing login.
type Credentials struct {
	UserID ref.UserID
	Server Server
	Token  string

	// TransactionID is the last transaction ID used by a previous
	// process, so writes continue the sequence.
	TransactionID int64
}

// CredentialsFromRecord converts a persisted record. An empty record
// returns ErrCredentialsRequired.
func CredentialsFromRecord(record sessionstore.Record) (Credentials, error) {
	if record.IsEmpty() {
		return Credentials{}, ErrCredentialsRequired
	}
	server, err := ParseServer(record.Server)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{
		UserID:        record.UserID,
		Server:        server,
		Token:         record.AccessToken,
		TransactionID: record.TransactionID,
	}, nil
}

func (c Credentials) validate() error {
	var missing []string
	if c.UserID == "" {
		missing = append(missing, "user ID")
	}
	if c.Server.IsZero() {
		missing = append(missing, "server")
	}
	if c.Token == "" {
		missing = append(missing, "access token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrCredentialsRequired, missing)
	}
	return nil
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// HTTPClient is used by every session. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Engine configures each session's engine. A nil Engine.Logger
	// inherits Logger.
	Engine EngineConfig

	// UseMemberNames enables member-derived names for rooms with no
	// name or alias.
	UseMemberNames bool
}

// Manager holds the active session. Connecting again replaces it.
type Manager struct {
	config ManagerConfig
	logger *slog.Logger

	mu     sync.Mutex
	active *Session
}

// NewManager creates a Manager with no active session.
func NewManager(config ManagerConfig) *Manager {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Engine.Logger == nil {
		config.Engine.Logger = logger
	}
	return &Manager{config: config, logger: logger}
}

// Active returns the active session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Connect builds a session from credentials, makes it the active
// session (closing any previous one), checks with the server that the
// access token belongs to credentials.UserID, and runs the initial
// full-state sync. If the check or the sync fails in transport the new
// session is closed, nothing is active, and the error is returned. A
// token owned by another user fails with ErrUserMismatch. Skipped
// malformed events are logged and do not fail the connect.
func (m *Manager) Connect(ctx context.Context, credentials Credentials) (*Session, error) {
	session, err := m.newSession(credentials)
	if err != nil {
		return nil, err
	}
	m.install(session)

	owner, err := session.transport.WhoAmI(ctx)
	if err != nil {
		m.uninstall(session)
		return nil, fmt.Errorf("syncengine: validating token for %s: %w", credentials.UserID, err)
	}
	if owner != credentials.UserID {
		m.uninstall(session)
		return nil, fmt.Errorf("%w: token belongs to %s, not %s", ErrUserMismatch, owner, credentials.UserID)
	}

	if _, err := session.engine.Sync(ctx, ""); err != nil {
		var applyErr *ApplyError
		if !errors.As(err, &applyErr) {
			m.uninstall(session)
			return nil, fmt.Errorf("syncengine: initial sync for %s: %w", credentials.UserID, err)
		}
		m.logger.Warn("initial sync folded with errors", "user_id", credentials.UserID, "error", err)
	}

	m.logger.Info("connected",
		"user_id", session.userID,
		"server", session.server.String(),
		"rooms", session.rooms.Len(),
	)
	return session, nil
}

// ConnectFromRecord connects with the credentials of a persisted
// record. An empty record returns ErrCredentialsRequired.
func (m *Manager) ConnectFromRecord(ctx context.Context, record sessionstore.Record) (*Session, error) {
	credentials, err := CredentialsFromRecord(record)
	if err != nil {
		return nil, err
	}
	return m.Connect(ctx, credentials)
}

// Resume builds a session from credentials and a snapshot without
// contacting the server, and makes it the active session. The
// session's since-token is the snapshot's, so the next Sync is
// incremental.
func (m *Manager) Resume(credentials Credentials, snapshot *sessionstore.Snapshot) (*Session, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("syncengine: resume requires a snapshot")
	}
	if snapshot.UserID != credentials.UserID {
		return nil, fmt.Errorf("syncengine: snapshot belongs to %s, not %s", snapshot.UserID, credentials.UserID)
	}

	session, err := m.newSession(credentials)
	if err != nil {
		return nil, err
	}
	if err := session.restore(snapshot); err != nil {
		m.logger.Warn("snapshot restored with errors", "user_id", credentials.UserID, "error", err)
	}
	m.install(session)

	m.logger.Info("resumed from snapshot",
		"user_id", session.userID,
		"rooms", session.rooms.Len(),
		"since", session.Since(),
	)
	return session, nil
}

// ViewRoom views a room of the active session.
func (m *Manager) ViewRoom(id ref.RoomID) (RoomView, error) {
	session := m.Active()
	if session == nil {
		return RoomView{}, ErrNoActiveSession
	}
	view, ok := session.ViewRoom(id)
	if !ok {
		return RoomView{}, fmt.Errorf("%w: %s", ErrUnknownRoom, id)
	}
	return view, nil
}

// Close closes the active session, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	session := m.active
	m.active = nil
	m.mu.Unlock()

	if session == nil {
		return nil
	}
	return session.Close()
}

func (m *Manager) newSession(credentials Credentials) (*Session, error) {
	if err := credentials.validate(); err != nil {
		return nil, err
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: credentials.Server.URL(),
		HTTPClient:    m.config.HTTPClient,
		Logger:        m.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("syncengine: %w", err)
	}
	transport, err := client.SessionFromToken(credentials.UserID, credentials.Token, credentials.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("syncengine: %w", err)
	}

	rooms := roomstate.NewRoomSet()
	users := userregistry.New()
	session := &Session{
		userID:    credentials.UserID,
		server:    credentials.Server,
		transport: transport,
		rooms:     rooms,
		users:     users,
		projector: roomstate.NewProjector(rooms, users, m.logger),
		resolver: roomstate.NameResolver{
			Self:       credentials.UserID,
			UseMembers: m.config.UseMemberNames,
		},
	}
	session.engine = newEngine(session, m.config.Engine)
	return session, nil
}

func (m *Manager) install(session *Session) {
	m.mu.Lock()
	previous := m.active
	m.active = session
	m.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			m.logger.Warn("closing replaced session", "user_id", previous.userID, "error", err)
		}
	}
}

func (m *Manager) uninstall(session *Session) {
	m.mu.Lock()
	if m.active == session {
		m.active = nil
	}
	m.mu.Unlock()
	session.Close()
}
