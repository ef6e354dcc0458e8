// Package cipher implements the container protocol core over filippo.io/age.
package cipher

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"lockbox-go/internal/lockbox"
)

// Engine implements lockbox.Cipher. Each encrypt call generates a fresh
// random file key inside age, wraps it once per recipient in input order,
// and encrypts the payload in authenticated chunks under that key. The
// whole plaintext is buffered in memory; inputs are bounded by file size.
type Engine struct{}

var _ lockbox.Cipher = (*Engine)(nil)

// NewEngine creates a cipher Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Encrypt encrypts plaintext to the given recipients and returns the binary
// container.
func (e *Engine) Encrypt(plaintext []byte, to []age.Recipient) ([]byte, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", lockbox.ErrInvalidArguments)
	}
	return seal(plaintext, to)
}

// EncryptWithPassphrase encrypts plaintext under a scrypt-derived key and
// returns the binary container.
func (e *Engine) EncryptWithPassphrase(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: creating scrypt recipient: %v", lockbox.ErrInvalidArguments, err)
	}
	return seal(plaintext, []age.Recipient{recipient})
}

func seal(plaintext []byte, to []age.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, to...)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt unwraps the file key with the given identities and returns the
// verified plaintext. Identities are tried in order against each stanza;
// the first successful unwrap wins.
func (e *Engine) Decrypt(container []byte, with []age.Identity) ([]byte, error) {
	if len(with) == 0 {
		return nil, fmt.Errorf("%w: at least one identity is required", lockbox.ErrInvalidArguments)
	}
	return open(container, with)
}

// DecryptWithPassphrase unwraps the file key with a scrypt-derived identity
// and returns the verified plaintext.
func (e *Engine) DecryptWithPassphrase(container []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: creating scrypt identity: %v", lockbox.ErrInvalidArguments, err)
	}
	return open(container, []age.Identity{identity})
}

func open(container []byte, with []age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(container), with...)
	if err != nil {
		// No identity matching any stanza includes the wrong-credential-kind
		// case: a passphrase against an asymmetric container and vice versa.
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, fmt.Errorf("%w: no supplied identity unwraps the file key", lockbox.ErrDecryption)
		}
		return nil, fmt.Errorf("%w: parsing container: %v", lockbox.ErrFormat, err)
	}

	// A recovered file key does not guarantee success: payload
	// authentication happens during the read.
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading payload: %v", lockbox.ErrDecryption, err)
	}
	return plaintext, nil
}
