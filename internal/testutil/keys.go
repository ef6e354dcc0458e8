package testutil

import (
	"testing"

	"filippo.io/age"
)

// NewTestIdentity generates a fresh X25519 identity and returns its
// key-file text and recipient string.
func NewTestIdentity(t *testing.T) (keyFile []byte, publicKey string) {
	t.Helper()

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generating test identity: %v", err)
	}
	return []byte(identity.String() + "\n"), identity.Recipient().String()
}
