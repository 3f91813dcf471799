// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/parley/lib/codec"
	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/messaging"
)

// ErrSnapshotCorrupt is returned by LoadSnapshot when the file cannot
// be decoded or its digest does not match.
var ErrSnapshotCorrupt = errors.New("sessionstore: snapshot is corrupt")

// snapshotFormat is the version of the snapshot file envelope.
const snapshotFormat = 1

// snapshotDomainKey keys the BLAKE3 digest over snapshot payloads. The
// bytes are the ASCII domain name, zero-padded to 32.
var snapshotDomainKey = [32]byte{
	'p', 'a', 'r', 'l', 'e', 'y', '.', 's', 'e', 's', 's', 'i', 'o', 'n', 's', 't',
	'o', 'r', 'e', '.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', 0, 0, 0, 0,
}

// Snapshot is the persisted room model of one session.
type Snapshot struct {
	UserID ref.UserID `json:"user_id"`

	// Since is the next_batch token the rooms are current as of.
	Since string `json:"since"`

	// SavedAt is the time of the last applied sync, in Unix
	// milliseconds.
	SavedAt int64 `json:"saved_at"`

	Rooms []RoomSnapshot `json:"rooms"`
}

// RoomSnapshot holds one room's logs, each oldest-first.
type RoomSnapshot struct {
	ID       ref.RoomID        `json:"id"`
	State    []messaging.Event `json:"state,omitempty"`
	Timeline []messaging.Event `json:"timeline,omitempty"`

	// Order interleaves the two logs in the order they were folded,
	// one entry per event, true for a timeline event. Empty means all
	// state events were folded before all timeline events.
	Order []bool `json:"order,omitempty"`
}

// EventCount returns the number of events in the snapshot.
func (s *Snapshot) EventCount() int {
	count := 0
	for _, room := range s.Rooms {
		count += len(room.State) + len(room.Timeline)
	}
	return count
}

// snapshotEnvelope is the on-disk form of snapshot.bin.
type snapshotEnvelope struct {
	Format      int         `cbor:"format"`
	Compression Compression `cbor:"compression"`
	Size        int         `cbor:"size"`
	Digest      []byte      `cbor:"digest"`
	Payload     []byte      `cbor:"payload"`
}

// SaveSnapshot writes snapshot to snapshot.bin, replacing any
// previous one.
func (s *Store) SaveSnapshot(snapshot *Snapshot) error {
	encoded, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if len(encoded) > maxDecompressedSize {
		return fmt.Errorf("encoded snapshot is %d bytes, limit is %d", len(encoded), maxDecompressedSize)
	}
	digest := snapshotDigest(encoded)

	payload, compression, err := compress(encoded, s.compression)
	if err != nil {
		return fmt.Errorf("compressing snapshot: %w", err)
	}

	data, err := codec.Marshal(snapshotEnvelope{
		Format:      snapshotFormat,
		Compression: compression,
		Size:        len(encoded),
		Digest:      digest[:],
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("encoding snapshot envelope: %w", err)
	}
	return s.writeFile(snapshotFile, data)
}

// LoadSnapshot reads snapshot.bin. A missing file returns nil and no
// error. Any decoding failure or digest mismatch wraps
// ErrSnapshotCorrupt; the caller should discard the snapshot and fall
// back to a full-state sync.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	snapshotPath := filepath.Join(s.dir, snapshotFile)
	data, err := os.ReadFile(snapshotPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot from %s: %w", snapshotPath, err)
	}

	var envelope snapshotEnvelope
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, snapshotPath, err)
	}
	if envelope.Format != snapshotFormat {
		return nil, fmt.Errorf("%w: %s: unsupported format %d", ErrSnapshotCorrupt, snapshotPath, envelope.Format)
	}

	encoded, err := decompress(envelope.Payload, envelope.Compression, envelope.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, snapshotPath, err)
	}
	digest := snapshotDigest(encoded)
	if !bytes.Equal(digest[:], envelope.Digest) {
		return nil, fmt.Errorf("%w: %s: digest mismatch", ErrSnapshotCorrupt, snapshotPath)
	}

	var snapshot Snapshot
	if err := codec.Unmarshal(encoded, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotCorrupt, snapshotPath, err)
	}
	return &snapshot, nil
}

// RemoveSnapshot deletes snapshot.bin if it exists.
func (s *Store) RemoveSnapshot() error {
	snapshotPath := filepath.Join(s.dir, snapshotFile)
	if err := os.Remove(snapshotPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing snapshot %s: %w", snapshotPath, err)
	}
	return nil
}

func snapshotDigest(data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(snapshotDomainKey[:])
	if err != nil {
		panic("sessionstore: blake3.NewKeyed with 32-byte key failed: " + err.Error())
	}
	hasher.Write(data)
	var digest [32]byte
	hasher.Sum(digest[:0])
	return digest
}
