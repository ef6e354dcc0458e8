package lockbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"filippo.io/age/armor"
)

// Format identifies the serialization of a container buffer.
type Format int

const (
	// FormatBinary is the fixed-width binary age container.
	FormatBinary Format = iota
	// FormatArmored is the ASCII-armored textual container.
	FormatArmored
)

func (f Format) String() string {
	if f == FormatArmored {
		return "armored"
	}
	return "binary"
}

// DetectFormat classifies a container buffer. A buffer is armored only if
// it begins with the exact armor header literal; anything else, including a
// truncated or otherwise malformed header, is treated as binary and left to
// fail container parsing downstream.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, []byte(armor.Header)) {
		return FormatArmored
	}
	return FormatBinary
}

// EncodeString converts a container to its string-transport form: armored
// containers are already text and pass through verbatim, binary containers
// are base64-encoded.
func EncodeString(container []byte) string {
	if DetectFormat(container) == FormatArmored {
		return string(container)
	}
	return base64.StdEncoding.EncodeToString(container)
}

// DecodeString converts a string-transport container back to bytes. Input
// beginning with the armor header is treated as armored text; everything
// else must be standard base64 of a binary container.
func DecodeString(input string) ([]byte, error) {
	if strings.HasPrefix(input, armor.Header) {
		return []byte(input), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding base64 container: %v", ErrFormat, err)
	}
	return decoded, nil
}
