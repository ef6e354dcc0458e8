package keys

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"filippo.io/age"

	"lockbox-go/internal/lockbox"
	"lockbox-go/internal/testutil"
)

func newTestKey(t *testing.T) (*age.X25519Identity, string) {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generating identity: %v", err)
	}
	return identity, identity.Recipient().String()
}

func TestStore_ParseIdentities_SkipsNonKeyLines(t *testing.T) {
	t.Parallel()
	identity, _ := newTestKey(t)

	keyFile := strings.Join([]string{
		"# created: 2024-01-15T10:30:00Z",
		"# public key: " + identity.Recipient().String(),
		"",
		"some stray text that is not a key",
		identity.String(),
		"",
	}, "\n")

	store := NewStore(testutil.FixedClock())
	identities, err := store.ParseIdentities([]byte(keyFile))
	if err != nil {
		t.Fatalf("ParseIdentities() error = %v", err)
	}
	if len(identities) != 1 {
		t.Errorf("ParseIdentities() returned %d identities, want 1", len(identities))
	}
}

func TestStore_ParseIdentities_PreservesOrder(t *testing.T) {
	t.Parallel()
	first, firstPub := newTestKey(t)
	second, secondPub := newTestKey(t)

	keyFile := first.String() + "\n" + second.String() + "\n"

	store := NewStore(testutil.FixedClock())
	identities, err := store.ParseIdentities([]byte(keyFile))
	if err != nil {
		t.Fatalf("ParseIdentities() error = %v", err)
	}
	if len(identities) != 2 {
		t.Fatalf("ParseIdentities() returned %d identities, want 2", len(identities))
	}

	got := []string{
		identities[0].(*age.X25519Identity).Recipient().String(),
		identities[1].(*age.X25519Identity).Recipient().String(),
	}
	if got[0] != firstPub || got[1] != secondPub {
		t.Errorf("identity order = %v, want [%s %s]", got, firstPub, secondPub)
	}
}

func TestStore_ParseIdentities_CorruptKeyLine(t *testing.T) {
	t.Parallel()
	store := NewStore(testutil.FixedClock())

	// Looks like a key, fails to parse: corruption, not a comment.
	_, err := store.ParseIdentities([]byte("AGE-SECRET-KEY-1NOTAREALKEY\n"))
	if !errors.Is(err, lockbox.ErrFormat) {
		t.Errorf("ParseIdentities() error = %v, want ErrFormat", err)
	}
}

func TestStore_ParseIdentities_NoKeyLines(t *testing.T) {
	t.Parallel()
	store := NewStore(testutil.FixedClock())

	tests := []struct {
		name    string
		keyFile string
	}{
		{name: "empty", keyFile: ""},
		{name: "only comments", keyFile: "# created: sometime\n# public key: age1xyz\n"},
		{name: "only blank lines", keyFile: "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ParseIdentities([]byte(tt.keyFile))
			if !errors.Is(err, lockbox.ErrNoIdentity) {
				t.Errorf("ParseIdentities() error = %v, want ErrNoIdentity", err)
			}
		})
	}
}

func TestStore_ParseRecipients(t *testing.T) {
	t.Parallel()
	store := NewStore(testutil.FixedClock())
	_, alice := newTestKey(t)
	_, bob := newTestKey(t)

	t.Run("empty list", func(t *testing.T) {
		_, err := store.ParseRecipients(nil)
		if !errors.Is(err, lockbox.ErrInvalidArguments) {
			t.Errorf("ParseRecipients(nil) error = %v, want ErrInvalidArguments", err)
		}
	})

	t.Run("all entries parse", func(t *testing.T) {
		recipients, err := store.ParseRecipients([]string{alice, bob})
		if err != nil {
			t.Fatalf("ParseRecipients() error = %v", err)
		}
		if len(recipients) != 2 {
			t.Errorf("ParseRecipients() returned %d recipients, want 2", len(recipients))
		}
	})

	t.Run("one bad entry fails the whole set", func(t *testing.T) {
		bad := "age1notavalidrecipient"
		_, err := store.ParseRecipients([]string{alice, bad, bob})
		if !errors.Is(err, lockbox.ErrFormat) {
			t.Fatalf("ParseRecipients() error = %v, want ErrFormat", err)
		}
		if !strings.Contains(err.Error(), bad) {
			t.Errorf("error %q does not name the offending string %q", err, bad)
		}
	})
}

func TestStore_Generate(t *testing.T) {
	t.Parallel()
	store := NewStore(testutil.FixedClock())

	generated, err := store.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	defer generated.Close()

	keyFile := string(generated.KeyFile.Bytes())

	wantCreated := "# created: 2024-01-15T10:30:00Z"
	if !strings.Contains(keyFile, wantCreated) {
		t.Errorf("key file missing %q:\n%s", wantCreated, keyFile)
	}
	wantPublic := fmt.Sprintf("# public key: %s", generated.PublicKey)
	if !strings.Contains(keyFile, wantPublic) {
		t.Errorf("key file missing %q:\n%s", wantPublic, keyFile)
	}

	// The serialized key file must parse back to the same identity.
	extracted, err := store.ExtractRecipient([]byte(keyFile))
	if err != nil {
		t.Fatalf("ExtractRecipient() error = %v", err)
	}
	if extracted != generated.PublicKey {
		t.Errorf("ExtractRecipient() = %q, want %q", extracted, generated.PublicKey)
	}
}

func TestStore_Generate_TimestampTracksClock(t *testing.T) {
	t.Parallel()
	clock := testutil.FixedClock()
	store := NewStore(clock)

	clock.Advance(25 * time.Hour)

	generated, err := store.Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	defer generated.Close()

	want := "# created: 2024-01-16T11:30:00Z"
	if keyFile := string(generated.KeyFile.Bytes()); !strings.Contains(keyFile, want) {
		t.Errorf("key file missing %q:\n%s", want, keyFile)
	}
}

func TestStore_ExtractRecipient(t *testing.T) {
	t.Parallel()
	store := NewStore(testutil.FixedClock())

	t.Run("first identity wins", func(t *testing.T) {
		first, firstPub := newTestKey(t)
		second, _ := newTestKey(t)
		keyFile := first.String() + "\n" + second.String() + "\n"

		got, err := store.ExtractRecipient([]byte(keyFile))
		if err != nil {
			t.Fatalf("ExtractRecipient() error = %v", err)
		}
		if got != firstPub {
			t.Errorf("ExtractRecipient() = %q, want %q", got, firstPub)
		}
	})

	t.Run("no key lines", func(t *testing.T) {
		_, err := store.ExtractRecipient([]byte("# only a comment\n"))
		if !errors.Is(err, lockbox.ErrNoIdentity) {
			t.Errorf("ExtractRecipient() error = %v, want ErrNoIdentity", err)
		}
	})

	t.Run("corrupt key line", func(t *testing.T) {
		_, err := store.ExtractRecipient([]byte("AGE-SECRET-KEY-1NOTAREALKEY\n"))
		if !errors.Is(err, lockbox.ErrFormat) {
			t.Errorf("ExtractRecipient() error = %v, want ErrFormat", err)
		}
	})
}
