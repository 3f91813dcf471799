// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/sealed"
	"github.com/bureau-foundation/parley/lib/secret"
)

// Record is the bootstrap record: enough to construct a session
// without re-authenticating.
type Record struct {
	UserID      ref.UserID `json:"user_id"`
	Server      string     `json:"server"`
	AccessToken string     `json:"access_token"`

	// TransactionID is the last transaction ID used for a write. The
	// next session continues from TransactionID+1.
	TransactionID int64 `json:"txn_id,omitempty"`
}

// IsEmpty reports whether the record carries no credentials.
func (r Record) IsEmpty() bool {
	return r.UserID == "" && r.AccessToken == ""
}

// LoadRecord reads the session record. A missing file yields an empty
// Record and no error.
//
// With an identity configured, session.json.age is read; if only a
// plaintext session.json exists it is read instead, and the next
// SaveRecord seals it and removes the plaintext copy.
func (s *Store) LoadRecord() (Record, error) {
	if s.identity != nil {
		record, err := s.loadSealedRecord()
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return record, err
		}
	}
	return s.loadPlainRecord()
}

func (s *Store) loadPlainRecord() (Record, error) {
	recordPath := filepath.Join(s.dir, recordFile)
	data, err := os.ReadFile(recordPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading session record from %s: %w", recordPath, err)
	}
	defer secret.Zero(data)
	return parseRecord(data, recordPath)
}

func (s *Store) loadSealedRecord() (Record, error) {
	recordPath := filepath.Join(s.dir, sealedRecordFile)
	ciphertext, err := os.ReadFile(recordPath)
	if err != nil {
		return Record{}, fmt.Errorf("reading session record from %s: %w", recordPath, err)
	}
	plaintext, err := sealed.Open(ciphertext, s.identity)
	if err != nil {
		return Record{}, fmt.Errorf("unsealing %s: %w", recordPath, err)
	}
	defer secret.Zero(plaintext)
	return parseRecord(plaintext, recordPath)
}

func parseRecord(data []byte, path string) (Record, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("parsing session record from %s: %w", path, err)
	}
	return record, nil
}

// SaveRecord writes the session record, sealed when the Store has an
// identity.
func (s *Store) SaveRecord(record Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	defer secret.Zero(data)

	if s.identity == nil {
		return s.writeFile(recordFile, data)
	}

	ciphertext, err := sealed.Seal(data, s.identity.Recipient)
	if err != nil {
		return fmt.Errorf("sealing session record: %w", err)
	}
	if err := s.writeFile(sealedRecordFile, ciphertext); err != nil {
		return err
	}
	plainPath := filepath.Join(s.dir, recordFile)
	if err := os.Remove(plainPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing plaintext record %s: %w", plainPath, err)
	}
	return nil
}
