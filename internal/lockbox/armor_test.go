package lockbox

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"filippo.io/age/armor"
)

func TestArmor_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "short", input: []byte("abc")},
		{name: "binary", input: []byte{0x00, 0xff, 0x10, 0x20}},
		{name: "longer than one armor line", input: bytes.Repeat([]byte{0xab}, 500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			armored, err := Armor(tt.input)
			if err != nil {
				t.Fatalf("Armor() error = %v", err)
			}

			text := string(armored)
			if !strings.HasPrefix(text, armor.Header) {
				t.Errorf("armored text does not start with the header literal:\n%s", text)
			}
			if !strings.Contains(text, armor.Footer) {
				t.Errorf("armored text does not contain the footer literal:\n%s", text)
			}

			unarmored, err := Unarmor(armored)
			if err != nil {
				t.Fatalf("Unarmor() error = %v", err)
			}
			if !bytes.Equal(unarmored, tt.input) {
				t.Errorf("round trip: got %v, want %v", unarmored, tt.input)
			}
		})
	}
}

func TestUnarmor_Malformed(t *testing.T) {
	t.Parallel()

	armored, err := Armor([]byte("payload bytes"))
	if err != nil {
		t.Fatalf("Armor() error = %v", err)
	}

	tests := []struct {
		name string
		text []byte
	}{
		{
			name: "missing footer",
			text: []byte(strings.SplitAfter(string(armored), "\n")[0] + "YWJj\n"),
		},
		{
			name: "invalid base64 body",
			text: []byte(armor.Header + "\n!!!not-base64!!!\n" + armor.Footer + "\n"),
		},
		{
			name: "malformed header",
			text: []byte("-----BEGIN SOMETHING ELSE-----\nYWJj\n" + armor.Footer + "\n"),
		},
		{
			name: "empty input",
			text: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unarmor(tt.text)
			if !errors.Is(err, ErrFormat) {
				t.Errorf("Unarmor() error = %v, want ErrFormat", err)
			}
		})
	}
}
