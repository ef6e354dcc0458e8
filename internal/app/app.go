package app

import (
	"fmt"
	"os"

	"lockbox-go/internal/cipher"
	"lockbox-go/internal/config"
	"lockbox-go/internal/fs"
	"lockbox-go/internal/keys"
	"lockbox-go/internal/lockbox"
	"lockbox-go/internal/secret"
)

// App is the application layer between the CLI and the lockbox Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the log file lifecycle on Close.
type App struct {
	cfg     *config.Config
	files   lockbox.FileStore
	service *lockbox.Service
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Keygen", "EncryptFile"); it
// tags every log line together with a per-invocation ID. The caller must
// call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := lockbox.UUIDGenerator{}.New()
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Info("starting operation", "operation", operation)

	files := fs.NewOSFileStore()
	service := lockbox.NewService(
		keys.NewStore(lockbox.RealClock{}),
		cipher.NewEngine(),
		files,
		&slogAdapter{l: logger},
	)

	return &App{
		cfg:     cfg,
		files:   files,
		service: service,
		logFile: logFile,
	}, nil
}

// KeyFilePath returns the key-file path to use: the explicit path if
// non-empty, otherwise the configured default.
func (a *App) KeyFilePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return a.cfg.Keys.KeyFile
}

// DefaultArmor returns the configured default for armored output.
func (a *App) DefaultArmor() bool {
	return a.cfg.Output.Armor
}

// Keygen generates a new identity, writes the key file to path with owner
// only permissions, and returns the public recipient string.
func (a *App) Keygen(path string) (string, error) {
	generated, err := a.service.GenerateIdentity()
	if err != nil {
		return "", err
	}
	defer generated.Close()

	if err := a.files.Write(path, generated.KeyFile.Bytes(), 0600); err != nil {
		return "", err
	}
	return generated.PublicKey, nil
}

// ExtractRecipient reads a key file and returns the recipient string for
// its first identity.
func (a *App) ExtractRecipient(keyPath string) (string, error) {
	keyFile, err := secret.ReadFile(keyPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", lockbox.ErrIO, err)
	}
	defer keyFile.Close()

	return a.service.ExtractRecipient(keyFile.Bytes())
}

// EncryptFile encrypts the file at src to dst.
func (a *App) EncryptFile(src, dst string, opts lockbox.EncryptOptions) error {
	return a.service.EncryptFile(src, dst, opts)
}

// DecryptFile decrypts the container file at src to dst. If keyPath is
// non-empty the key file is loaded into protected memory for the duration
// of the call; otherwise passphrase is used.
func (a *App) DecryptFile(src, dst, keyPath, passphrase string) error {
	creds, cleanup, err := a.credentials(keyPath, passphrase)
	if err != nil {
		return err
	}
	defer cleanup()

	return a.service.DecryptFile(src, dst, creds)
}

// EncryptText encrypts plaintext and returns the container in string form.
func (a *App) EncryptText(plaintext []byte, opts lockbox.EncryptOptions) (string, error) {
	return a.service.EncryptString(plaintext, opts)
}

// DecryptText decrypts a string-transport container and returns the
// plaintext text.
func (a *App) DecryptText(input, keyPath, passphrase string) (string, error) {
	creds, cleanup, err := a.credentials(keyPath, passphrase)
	if err != nil {
		return "", err
	}
	defer cleanup()

	return a.service.DecryptString(input, creds)
}

// credentials builds decryption credentials from a key-file path or a
// passphrase. The returned cleanup zeroes any loaded key material and must
// be called on every path.
func (a *App) credentials(keyPath, passphrase string) (lockbox.Credentials, func(), error) {
	if keyPath != "" && passphrase != "" {
		return lockbox.Credentials{}, func() {}, fmt.Errorf("%w: key file and passphrase are mutually exclusive", lockbox.ErrInvalidArguments)
	}
	if keyPath == "" {
		// May be empty as well; the service rejects that case.
		return lockbox.Credentials{Passphrase: passphrase}, func() {}, nil
	}

	keyFile, err := secret.ReadFile(keyPath)
	if err != nil {
		return lockbox.Credentials{}, func() {}, fmt.Errorf("%w: %v", lockbox.ErrIO, err)
	}
	return lockbox.Credentials{KeyFile: keyFile.Bytes()}, func() { keyFile.Close() }, nil
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
