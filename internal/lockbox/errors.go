package lockbox

import "errors"

// Error kinds returned by the lockbox operations. Callers match them with
// errors.Is; the wrapped message carries the operation-specific detail.
var (
	// ErrInvalidArguments means the caller supplied zero or conflicting
	// authentication modes, or an empty recipient list.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrIO means an underlying file read or write failed.
	ErrIO = errors.New("io failure")

	// ErrFormat means a container, key file, or recipient string does not
	// parse: malformed armor, invalid base64, corrupt key line.
	ErrFormat = errors.New("format error")

	// ErrNoIdentity means a key file contained zero significant key lines.
	ErrNoIdentity = errors.New("no identity found")

	// ErrDecryption means no supplied identity or passphrase unwraps any
	// stanza, or the payload failed integrity verification.
	ErrDecryption = errors.New("decryption failed")

	// ErrEncoding means decrypted data is not valid text where a text
	// result was required.
	ErrEncoding = errors.New("decrypted data is not valid text")
)
