package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFile reads a whole file into a protected buffer. Trailing whitespace
// is kept (key files end in a newline); the intermediate heap copy is
// zeroed before returning. Returns an error if the file is empty.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		Zero(data)
		return nil, fmt.Errorf("file %s is empty", path)
	}

	// NewFromBytes zeroes data.
	return NewFromBytes(data)
}
