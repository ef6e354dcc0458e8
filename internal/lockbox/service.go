package lockbox

import (
	"fmt"
	"os"
	"unicode/utf8"

	"filippo.io/age"

	"lockbox-go/internal/secret"
)

// KeySource parses and generates encryption credentials.
type KeySource interface {
	// ParseIdentities extracts decryption identities from key-file text.
	// Only lines with the secret-key prefix are significant; all other
	// lines are skipped. File order is preserved because decrypt-side
	// trial order is first-match-wins.
	ParseIdentities(keyFile []byte) ([]age.Identity, error)

	// ParseRecipients parses recipient public-key strings. All entries
	// must parse or the whole call fails.
	ParseRecipients(specs []string) ([]age.Recipient, error)

	// Generate creates a fresh identity and its key-file serialization.
	Generate() (*GeneratedIdentity, error)

	// ExtractRecipient returns the public counterpart of the first valid
	// identity in key-file text.
	ExtractRecipient(keyFile []byte) (string, error)
}

// Cipher encrypts and decrypts binary containers.
type Cipher interface {
	Encrypt(plaintext []byte, to []age.Recipient) ([]byte, error)
	EncryptWithPassphrase(plaintext []byte, passphrase string) ([]byte, error)
	Decrypt(container []byte, with []age.Identity) ([]byte, error)
	DecryptWithPassphrase(container []byte, passphrase string) ([]byte, error)
}

// FileStore abstracts whole-file reads and writes. Writes are atomic with
// respect to the process: on success the destination holds the complete
// data, never a partial file.
type FileStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte, perm os.FileMode) error
}

// GeneratedIdentity is a freshly generated keypair. KeyFile holds the full
// key-file text (comment lines plus the secret key line) in protected
// memory; the caller must Close it after writing it out.
type GeneratedIdentity struct {
	KeyFile   *secret.Buffer
	PublicKey string
}

// Close releases the protected key-file memory. Idempotent.
func (g *GeneratedIdentity) Close() error {
	if g.KeyFile != nil {
		return g.KeyFile.Close()
	}
	return nil
}

// EncryptOptions selects the encryption mode. Exactly one of Recipients or
// Passphrase must be set.
type EncryptOptions struct {
	Recipients []string
	Passphrase string
	Armor      bool
}

func (o EncryptOptions) validate() error {
	hasRecipients := len(o.Recipients) > 0
	hasPassphrase := o.Passphrase != ""
	switch {
	case hasRecipients && hasPassphrase:
		return fmt.Errorf("%w: recipients and passphrase are mutually exclusive", ErrInvalidArguments)
	case !hasRecipients && !hasPassphrase:
		return fmt.Errorf("%w: either recipients or a passphrase is required", ErrInvalidArguments)
	}
	return nil
}

// Credentials selects the decryption mode. Exactly one of KeyFile (key-file
// text containing identities) or Passphrase must be set.
type Credentials struct {
	KeyFile    []byte
	Passphrase string
}

func (c Credentials) validate() error {
	hasKeyFile := len(c.KeyFile) > 0
	hasPassphrase := c.Passphrase != ""
	switch {
	case hasKeyFile && hasPassphrase:
		return fmt.Errorf("%w: key file and passphrase are mutually exclusive", ErrInvalidArguments)
	case !hasKeyFile && !hasPassphrase:
		return fmt.Errorf("%w: either a key file or a passphrase is required", ErrInvalidArguments)
	}
	return nil
}

// Service is the orchestration layer tying format detection, armor, key
// parsing, and the cipher engine behind the operation surface.
type Service struct {
	keys   KeySource
	cipher Cipher
	files  FileStore
	logger Logger
}

// NewService creates a Service with the provided dependencies.
func NewService(keys KeySource, cipher Cipher, files FileStore, logger Logger) *Service {
	return &Service{
		keys:   keys,
		cipher: cipher,
		files:  files,
		logger: logger,
	}
}

// GenerateIdentity creates a fresh identity and its key-file serialization.
func (s *Service) GenerateIdentity() (*GeneratedIdentity, error) {
	generated, err := s.keys.Generate()
	if err != nil {
		return nil, err
	}
	s.logger.Info("generated identity", "public_key", generated.PublicKey)
	return generated, nil
}

// ExtractRecipient returns the recipient string for the first valid
// identity in key-file text.
func (s *Service) ExtractRecipient(keyFile []byte) (string, error) {
	return s.keys.ExtractRecipient(keyFile)
}

// Encrypt encrypts plaintext to the recipients or passphrase in opts and
// returns a binary container, or an armored one when opts.Armor is set.
func (s *Service) Encrypt(plaintext []byte, opts EncryptOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var container []byte
	var err error
	if opts.Passphrase != "" {
		container, err = s.cipher.EncryptWithPassphrase(plaintext, opts.Passphrase)
	} else {
		var recipients []age.Recipient
		recipients, err = s.keys.ParseRecipients(opts.Recipients)
		if err != nil {
			return nil, err
		}
		container, err = s.cipher.Encrypt(plaintext, recipients)
	}
	if err != nil {
		return nil, err
	}

	if opts.Armor {
		container, err = Armor(container)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("encrypted payload",
		"plaintext_bytes", len(plaintext),
		"recipients", len(opts.Recipients),
		"armored", opts.Armor)
	return container, nil
}

// Decrypt decrypts a container in either serialization using the key-file
// identities or passphrase in creds, and returns the verified plaintext.
func (s *Service) Decrypt(container []byte, creds Credentials) ([]byte, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}

	format := DetectFormat(container)
	if format == FormatArmored {
		var err error
		container, err = Unarmor(container)
		if err != nil {
			return nil, err
		}
	}
	s.logger.Debug("decrypting container", "format", format.String())

	if creds.Passphrase != "" {
		return s.cipher.DecryptWithPassphrase(container, creds.Passphrase)
	}

	identities, err := s.keys.ParseIdentities(creds.KeyFile)
	if err != nil {
		return nil, err
	}
	return s.cipher.Decrypt(container, identities)
}

// EncryptFile reads the plaintext file at src, encrypts it per opts, and
// writes the container to dst in one atomic operation.
func (s *Service) EncryptFile(src, dst string, opts EncryptOptions) error {
	plaintext, err := s.files.Read(src)
	if err != nil {
		return err
	}

	container, err := s.Encrypt(plaintext, opts)
	if err != nil {
		return err
	}

	if err := s.files.Write(dst, container, 0644); err != nil {
		return err
	}
	s.logger.Info("encrypted file", "source", src, "dest", dst, "armored", opts.Armor)
	return nil
}

// DecryptFile reads the container file at src, decrypts it with creds, and
// writes the plaintext to dst in one atomic operation.
func (s *Service) DecryptFile(src, dst string, creds Credentials) error {
	container, err := s.files.Read(src)
	if err != nil {
		return err
	}

	plaintext, err := s.Decrypt(container, creds)
	if err != nil {
		return err
	}

	if err := s.files.Write(dst, plaintext, 0644); err != nil {
		return err
	}
	s.logger.Info("decrypted file", "source", src, "dest", dst)
	return nil
}

// EncryptString encrypts plaintext per opts and returns the container in
// string-transport form: armored text verbatim, or base64 of the binary
// container.
func (s *Service) EncryptString(plaintext []byte, opts EncryptOptions) (string, error) {
	container, err := s.Encrypt(plaintext, opts)
	if err != nil {
		return "", err
	}
	return EncodeString(container), nil
}

// DecryptString decrypts a string-transport container and returns the
// plaintext as text. Fails with ErrEncoding if the plaintext is not valid
// UTF-8.
func (s *Service) DecryptString(input string, creds Credentials) (string, error) {
	container, err := DecodeString(input)
	if err != nil {
		return "", err
	}

	plaintext, err := s.Decrypt(container, creds)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: %d bytes of non-UTF-8 data", ErrEncoding, len(plaintext))
	}
	return string(plaintext), nil
}
