// Package keys parses and generates age credentials. Key files are parsed
// permissively (only secret-key lines are significant, everything else is a
// comment), recipient strings strictly (one bad entry fails the whole set).
// The two strategies are deliberate: key files legitimately carry
// human-readable metadata, recipient strings are explicit user arguments.
package keys

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"filippo.io/age"

	"lockbox-go/internal/lockbox"
	"lockbox-go/internal/secret"
)

// secretKeyPrefix marks a significant line in a key file.
const secretKeyPrefix = "AGE-SECRET-KEY-"

// Store implements lockbox.KeySource. The clock stamps generated key files.
type Store struct {
	clock lockbox.Clock
}

var _ lockbox.KeySource = (*Store)(nil)

// NewStore creates a key Store.
func NewStore(clock lockbox.Clock) *Store {
	return &Store{clock: clock}
}

// ParseIdentities extracts decryption identities from key-file text in file
// order. Lines without the secret-key prefix are skipped silently; a line
// that carries the prefix but fails to parse indicates corruption and is a
// hard error, not a comment.
func (s *Store) ParseIdentities(keyFile []byte) ([]age.Identity, error) {
	var identities []age.Identity
	for _, line := range bytes.Split(keyFile, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, []byte(secretKeyPrefix)) {
			continue
		}
		identity, err := age.ParseX25519Identity(string(line))
		if err != nil {
			return nil, fmt.Errorf("%w: parsing secret key line: %v", lockbox.ErrFormat, err)
		}
		identities = append(identities, identity)
	}

	if len(identities) == 0 {
		return nil, fmt.Errorf("%w: key file contains no secret key lines", lockbox.ErrNoIdentity)
	}
	return identities, nil
}

// ParseRecipients parses recipient public-key strings. Every entry must
// parse; the first malformed one fails the whole call.
func (s *Store) ParseRecipients(specs []string) ([]age.Recipient, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", lockbox.ErrInvalidArguments)
	}

	recipients := make([]age.Recipient, 0, len(specs))
	for _, spec := range specs {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(spec))
		if err != nil {
			return nil, fmt.Errorf("%w: parsing recipient %q: %v", lockbox.ErrFormat, spec, err)
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// Generate creates a fresh X25519 identity and serializes it in the key-file
// format: creation time and public key as comments, then the secret key line.
// The text is moved into protected memory before returning.
func (s *Store) Generate() (*lockbox.GeneratedIdentity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}

	publicKey := identity.Recipient().String()
	created := s.clock.Now().UTC().Format(time.RFC3339)
	keyFile := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n", created, publicKey, identity.String())

	protected, err := secret.NewFromBytes([]byte(keyFile))
	if err != nil {
		return nil, fmt.Errorf("protecting key file: %w", err)
	}

	return &lockbox.GeneratedIdentity{
		KeyFile:   protected,
		PublicKey: publicKey,
	}, nil
}

// ExtractRecipient returns the public counterpart of the first valid
// identity in key-file text.
func (s *Store) ExtractRecipient(keyFile []byte) (string, error) {
	for _, line := range bytes.Split(keyFile, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, []byte(secretKeyPrefix)) {
			continue
		}
		identity, err := age.ParseX25519Identity(string(line))
		if err != nil {
			return "", fmt.Errorf("%w: parsing secret key line: %v", lockbox.ErrFormat, err)
		}
		return identity.Recipient().String(), nil
	}
	return "", fmt.Errorf("%w: key file contains no secret key lines", lockbox.ErrNoIdentity)
}
