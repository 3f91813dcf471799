// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/parley/lib/secret"
)

// ErrNoIdentity is returned by LoadIdentity for a file with no
// AGE-SECRET-KEY line.
var ErrNoIdentity = errors.New("sealed: no age identity in file")

// Identity is an age x25519 identity. The caller must Close it.
type Identity struct {
	privateKey *secret.Buffer

	// Recipient is the public half in age1... form.
	Recipient string
}

// Close releases the private key memory. Idempotent.
func (i *Identity) Close() error {
	if i.privateKey != nil {
		return i.privateKey.Close()
	}
	return nil
}

// GenerateIdentity creates a new x25519 identity.
func GenerateIdentity() (*Identity, error) {
	generated, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("sealed: generating identity: %w", err)
	}
	return protect([]byte(generated.String()), generated.Recipient().String())
}

// LoadIdentity reads an identity file. Blank lines and lines starting
// with '#' are skipped; the first remaining line must be the secret
// key.
func LoadIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sealed: reading identity: %w", err)
	}
	defer secret.Zero(data)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		parsed, err := age.ParseX25519Identity(string(line))
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing identity in %s: %w", path, err)
		}
		key := make([]byte, len(line))
		copy(key, line)
		return protect(key, parsed.Recipient().String())
	}
	return nil, fmt.Errorf("%w: %s", ErrNoIdentity, path)
}

// WriteIdentity writes identity to path in age-keygen format with
// owner-only permissions. An existing file is not overwritten.
func WriteIdentity(path string, identity *Identity) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("sealed: creating identity file: %w", err)
	}
	content := fmt.Sprintf("# public key: %s\n%s\n", identity.Recipient, identity.privateKey.String())
	_, writeErr := io.WriteString(file, content)
	closeErr := file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return fmt.Errorf("sealed: writing identity file: %w", err)
	}
	return nil
}

// Seal encrypts plaintext to the given age1... recipients.
func Seal(plaintext []byte, recipients ...string) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("sealed: at least one recipient is required")
	}

	parsed := make([]age.Recipient, 0, len(recipients))
	for _, key := range recipients {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing recipient %q: %w", key, err)
		}
		parsed = append(parsed, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, parsed...)
	if err != nil {
		return nil, fmt.Errorf("sealed: creating encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("sealed: encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("sealed: finalizing: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts ciphertext with identity. The caller owns the returned
// plaintext and should secret.Zero it once parsed.
func Open(ciphertext []byte, identity *Identity) ([]byte, error) {
	parsed, err := age.ParseX25519Identity(identity.privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("sealed: parsing identity: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), parsed)
	if err != nil {
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("sealed: reading plaintext: %w", err)
	}
	return plaintext, nil
}

func protect(privateKey []byte, recipient string) (*Identity, error) {
	buffer, err := secret.NewFromBytes(privateKey)
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting private key: %w", err)
	}
	return &Identity{privateKey: buffer, Recipient: recipient}, nil
}
