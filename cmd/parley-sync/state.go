// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/sealed"
	"github.com/bureau-foundation/parley/lib/sessionstore"
	"github.com/bureau-foundation/parley/lib/syncengine"
)

// loadOrCreateIdentity loads the age identity at path, generating and
// writing a new one when the file does not exist. An empty path means
// the record is stored unsealed and returns a nil identity.
func loadOrCreateIdentity(path string, logger *slog.Logger) (*sealed.Identity, error) {
	if path == "" {
		return nil, nil
	}
	identity, err := sealed.LoadIdentity(path)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	identity, err = sealed.GenerateIdentity()
	if err != nil {
		return nil, err
	}
	if err := sealed.WriteIdentity(path, identity); err != nil {
		identity.Close()
		return nil, err
	}
	logger.Info("generated age identity", "path", path, "recipient", identity.Recipient)
	return identity, nil
}

// resolveCredentials merges the stored record with command-line
// overrides. Logging in as a different user discards the stored
// transaction counter. The server comes from --homeserver, then the
// record, then the config default, then the user ID's server name.
func resolveCredentials(record sessionstore.Record, opts options, defaultServer string) (syncengine.Credentials, error) {
	if opts.userID != "" {
		userID := ref.UserID(opts.userID)
		if userID != record.UserID {
			record = sessionstore.Record{UserID: userID}
		}
		record.AccessToken = opts.token
	}
	if record.IsEmpty() {
		return syncengine.Credentials{}, syncengine.ErrCredentialsRequired
	}

	switch {
	case opts.homeserver != "":
		record.Server = opts.homeserver
	case record.Server != "":
	case defaultServer != "":
		record.Server = defaultServer
	default:
		record.Server = record.UserID.Server()
	}
	if record.Server == "" {
		return syncengine.Credentials{}, fmt.Errorf("%w: no homeserver for %s", syncengine.ErrCredentialsRequired, record.UserID)
	}
	return syncengine.CredentialsFromRecord(record)
}

// openSession resumes from the stored snapshot when one exists for the
// same user, and otherwise connects with a full-state sync. resumed
// reports which happened.
func openSession(ctx context.Context, manager *syncengine.Manager, store *sessionstore.Store,
	credentials syncengine.Credentials, useSnapshot bool, logger *slog.Logger,
) (session *syncengine.Session, resumed bool, err error) {
	if useSnapshot {
		snapshot, err := store.LoadSnapshot()
		switch {
		case err != nil:
			logger.Warn("discarding unreadable snapshot", "error", err)
			if err := store.RemoveSnapshot(); err != nil {
				logger.Warn("removing snapshot failed", "error", err)
			}
		case snapshot != nil && snapshot.UserID == credentials.UserID:
			session, err := manager.Resume(credentials, snapshot)
			if err != nil {
				return nil, false, err
			}
			return session, true, nil
		case snapshot != nil:
			logger.Info("ignoring snapshot of another user", "snapshot_user", snapshot.UserID)
		}
	}

	session, err = manager.Connect(ctx, credentials)
	if err != nil {
		return nil, false, err
	}
	return session, false, nil
}

// persister writes the session record and snapshot after each sync.
// Failures are logged and do not stop the sync loop.
type persister struct {
	store     *sessionstore.Store
	snapshots bool
	logger    *slog.Logger
}

func (p *persister) save(_ context.Context, session *syncengine.Session) {
	p.saveRecord(session)
	if !p.snapshots {
		return
	}
	snapshot := session.Snapshot()
	if err := p.store.SaveSnapshot(snapshot); err != nil {
		p.logger.Warn("saving snapshot failed", "error", err)
		return
	}
	p.logger.Debug("snapshot saved", "since", snapshot.Since, "rooms", len(snapshot.Rooms), "events", snapshot.EventCount())
}

func (p *persister) saveRecord(session *syncengine.Session) {
	if err := p.store.SaveRecord(session.Record()); err != nil {
		p.logger.Warn("saving session record failed", "error", err)
	}
}
