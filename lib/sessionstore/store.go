// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/parley/lib/sealed"
)

const (
	recordFile       = "session.json"
	sealedRecordFile = "session.json.age"
	snapshotFile     = "snapshot.bin"
)

// Options configures a Store.
type Options struct {
	// Identity seals the session record at rest. Nil stores it as
	// plaintext JSON. The Store borrows the identity; the caller
	// closes it.
	Identity *sealed.Identity

	// Compression is applied to snapshot payloads. The zero value is
	// CompressionNone.
	Compression Compression
}

// Store reads and writes the state files of one directory.
type Store struct {
	dir         string
	identity    *sealed.Identity
	compression Compression
}

// New returns a Store rooted at dir. The directory is not created
// until the first write.
func New(dir string, options Options) *Store {
	return &Store{
		dir:         dir,
		identity:    options.Identity,
		compression: options.Compression,
	}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// writeFile atomically replaces name in the state directory with data.
// The file is created 0600 by os.CreateTemp and keeps that mode.
func (s *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", name, err)
	}

	finalPath := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming %s into place: %w", finalPath, err)
	}

	success = true
	return nil
}
