// Package id issues assessment identifiers. ULIDs sort by creation time, so
// journal listings ordered by id are also ordered by time.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator issues monotonic ULIDs. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator returns a generator with the given clock and a PRNG seeded
// from seed. Tests pass a fixed clock and seed to get repeatable ids.
func NewGenerator(now func() time.Time, seed int64) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// New returns the next id.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		// only reachable if the monotonic entropy overflows within one ms
		panic(err)
	}
	return id.String()
}

var std = NewGenerator(time.Now, seed())

func seed() int64 {
	var s int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &s)
	if s == 0 {
		s = time.Now().UnixNano()
	}
	return s
}

// New returns an id from the process-wide generator.
func New() string {
	return std.New()
}

// Time extracts the creation time encoded in id.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}

// Valid reports whether s is a well-formed id.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
