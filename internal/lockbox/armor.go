package lockbox

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age/armor"
)

// Armor wraps a binary container in the textual armor envelope: base64 of
// the binary form, line-wrapped, between the header and footer literals.
func Armor(container []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := armor.NewWriter(&buf)
	if _, err := w.Write(container); err != nil {
		return nil, fmt.Errorf("%w: writing armor body: %v", ErrFormat, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalizing armor: %v", ErrFormat, err)
	}
	return buf.Bytes(), nil
}

// Unarmor strips the armor envelope and returns the binary container.
// A missing footer, invalid base64 body, or malformed header is ErrFormat.
func Unarmor(text []byte) ([]byte, error) {
	r := armor.NewReader(bytes.NewReader(text))
	container, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading armored container: %v", ErrFormat, err)
	}
	return container, nil
}
