// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newIdentity(t *testing.T) *Identity {
	t.Helper()
	identity, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity() error: %v", err)
	}
	t.Cleanup(func() { identity.Close() })
	return identity
}

func TestGenerateIdentity(t *testing.T) {
	first := newIdentity(t)
	second := newIdentity(t)

	if !strings.HasPrefix(first.Recipient, "age1") {
		t.Errorf("Recipient = %q, want prefix age1", first.Recipient)
	}
	if first.Recipient == second.Recipient {
		t.Error("two generated identities share a recipient")
	}
}

func TestSealOpen(t *testing.T) {
	identity := newIdentity(t)
	plaintext := []byte(`{"user_id":"@a:x","access_token":"syt_secret"}`)

	ciphertext, err := Seal(plaintext, identity.Recipient)
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("syt_secret")) {
		t.Fatal("ciphertext contains the plaintext token")
	}

	opened, err := Open(ciphertext, identity)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Open() = %q, want %q", opened, plaintext)
	}
}

func TestOpenWrongIdentity(t *testing.T) {
	owner := newIdentity(t)
	stranger := newIdentity(t)

	ciphertext, err := Seal([]byte("token"), owner.Recipient)
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	if _, err := Open(ciphertext, stranger); err == nil {
		t.Fatal("Open() with the wrong identity succeeded")
	}
}

func TestSealRequiresRecipient(t *testing.T) {
	if _, err := Seal([]byte("x")); err == nil {
		t.Error("Seal() with no recipients succeeded")
	}
	if _, err := Seal([]byte("x"), "not-a-key"); err == nil {
		t.Error("Seal() with an invalid recipient succeeded")
	}
}

func TestIdentityFileRoundTrip(t *testing.T) {
	identity := newIdentity(t)
	path := filepath.Join(t.TempDir(), "identity.txt")

	if err := WriteIdentity(path, identity); err != nil {
		t.Fatalf("WriteIdentity() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity file mode = %o, want 600", info.Mode().Perm())
	}
	if err := WriteIdentity(path, identity); err == nil {
		t.Error("WriteIdentity() overwrote an existing file")
	}

	loaded, err := LoadIdentity(path)
	if err != nil {
		t.Fatalf("LoadIdentity() error: %v", err)
	}
	defer loaded.Close()
	if loaded.Recipient != identity.Recipient {
		t.Errorf("loaded recipient = %q, want %q", loaded.Recipient, identity.Recipient)
	}

	ciphertext, err := Seal([]byte("token"), identity.Recipient)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Open(ciphertext, loaded); err != nil {
		t.Errorf("loaded identity cannot open: %v", err)
	}
}

func TestLoadIdentityErrors(t *testing.T) {
	directory := t.TempDir()

	t.Run("no key", func(t *testing.T) {
		path := filepath.Join(directory, "empty.txt")
		if err := os.WriteFile(path, []byte("# only a comment\n\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadIdentity(path)
		if !errors.Is(err, ErrNoIdentity) {
			t.Errorf("LoadIdentity() error = %v, want ErrNoIdentity", err)
		}
	})

	t.Run("garbage key", func(t *testing.T) {
		path := filepath.Join(directory, "bad.txt")
		if err := os.WriteFile(path, []byte("AGE-SECRET-KEY-NOPE\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadIdentity(path); err == nil {
			t.Error("LoadIdentity() accepted an invalid key")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadIdentity(filepath.Join(directory, "absent.txt")); err == nil {
			t.Error("LoadIdentity() of a missing file succeeded")
		}
	})
}
