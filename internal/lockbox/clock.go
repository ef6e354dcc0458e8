package lockbox

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so key-file timestamps are deterministic
// in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// UUIDGenerator produces random UUIDs for per-invocation operation IDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
