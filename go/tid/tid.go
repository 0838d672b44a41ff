// Package tid implements TemporalId: a 12-byte, chronologically ordered
// identifier used throughout the store both as a record's primary key and
// as the logical clock that orders every read and write. Byte-lexicographic
// order of a TemporalId's wire form equals its chronological order.
package tid

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
)

// Size is the length in bytes of a TemporalId's wire form.
const Size = 12

// TemporalId is a 12-byte value: a 4-byte big-endian seconds-since-epoch
// field, a 3-byte machine field, a 2-byte process field, and a 3-byte
// counter field, in that order. The zero value is Empty.
type TemporalId [Size]byte

// Empty is the all-zero TemporalId. It sorts below every non-empty id and
// is the dataset of every root-dataset-only record.
var Empty TemporalId

// Secs returns the seconds-since-epoch field.
func (id TemporalId) Secs() uint32 {
	return binary.BigEndian.Uint32(id[0:4])
}

// Machine returns the 3-byte machine field as the low 24 bits of a uint32.
func (id TemporalId) Machine() uint32 {
	return uint32(id[4])<<16 | uint32(id[5])<<8 | uint32(id[6])
}

// Pid returns the 2-byte process field.
func (id TemporalId) Pid() uint16 {
	return binary.BigEndian.Uint16(id[7:9])
}

// Counter returns the 3-byte counter field as the low 24 bits of a uint32.
func (id TemporalId) Counter() uint32 {
	return uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11])
}

// IsEmpty reports whether id is the all-zero Empty value.
func (id TemporalId) IsEmpty() bool {
	return id == Empty
}

// Before reports whether id sorts strictly before other, i.e. id is
// chronologically earlier (or Empty and other is not).
func (id TemporalId) Before(other TemporalId) bool {
	return lessBytes(id, other)
}

// After reports whether id sorts strictly after other.
func (id TemporalId) After(other TemporalId) bool {
	return lessBytes(other, id)
}

func lessBytes(a, b TemporalId) bool {
	for i := 0; i < Size; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// String returns the 24-character lowercase hex encoding of id. Empty
// encodes as 24 zero digits.
func (id TemporalId) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler so a TemporalId serializes
// as its hex string inside JSON payloads.
func (id TemporalId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *TemporalId) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse decodes a 24-character lowercase hex string into a TemporalId.
func Parse(s string) (TemporalId, error) {
	if len(s) != Size*2 {
		return Empty, skerr.Fmt("BadFormat: TemporalId %q must be %d hex characters, got %d", s, Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Empty, skerr.Wrapf(err, "BadFormat: TemporalId %q is not valid hex", s)
	}
	var id TemporalId
	copy(id[:], b)
	return id, nil
}

// MustParse is like Parse but panics on error; it exists for literals in
// tests and fixtures where the input is known to be well-formed.
func MustParse(s string) TemporalId {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// machineID is a 24-bit value derived once per process from the host name,
// used in place of a true machine identifier. The standard library has no
// MAC-address or cloud-instance-id accessor that is both portable and
// dependency-free, so this is deliberately a stdlib-only piece (see
// DESIGN.md): it hashes os.Hostname() down to 3 bytes, which is exactly
// the entropy the wire format budgets for this field.
func machineID() [3]byte {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	sum := sha256.Sum256([]byte(host))
	var m [3]byte
	copy(m[:], sum[:3])
	return m
}

// Generator produces strictly increasing TemporalIds. A single Generator
// must not be shared across data sources with different notions of "now";
// each DataSource owns exactly one.
//
// The generator is the only thing in this package allowed to mutate
// process-wide state (its own counter/lastSecs pair); TemporalIds
// themselves are immutable values.
type Generator struct {
	mu       sync.Mutex
	machine  [3]byte
	pid      uint16
	lastSecs uint32
	counter  uint32
}

// NewGenerator returns a Generator seeded from the host name and the
// current process id.
func NewGenerator() *Generator {
	return &Generator{
		machine: machineID(),
		pid:     uint16(os.Getpid()),
	}
}

// Next returns the next TemporalId from g, strictly greater than every id
// g has previously returned. now is the caller's notion of the current
// time (normally now.Now(ctx)); on wall-clock regression relative to the
// last id g issued, Next advances the seconds field synthetically rather
// than emitting a non-increasing id.
func (g *Generator) Next(now time.Time) TemporalId {
	g.mu.Lock()
	defer g.mu.Unlock()

	secs := uint32(now.Unix())
	switch {
	case secs < g.lastSecs:
		// Wall clock went backwards: advance the seconds field
		// synthetically past the last id issued and restart the counter.
		secs = g.lastSecs + 1
		g.counter = 0
	case secs == g.lastSecs:
		g.counter++
		if g.counter > 0xFFFFFF {
			// Counter space for this second is exhausted; borrow a second
			// from the future rather than overflow into the machine field.
			secs++
			g.counter = 0
		}
	default:
		g.counter = 0
	}
	g.lastSecs = secs

	var id TemporalId
	binary.BigEndian.PutUint32(id[0:4], secs)
	id[4], id[5], id[6] = g.machine[0], g.machine[1], g.machine[2]
	binary.BigEndian.PutUint16(id[7:9], g.pid)
	id[9] = byte(g.counter >> 16)
	id[10] = byte(g.counter >> 8)
	id[11] = byte(g.counter)
	return id
}

// GoString supports %#v formatting for debug output.
func (id TemporalId) GoString() string {
	return fmt.Sprintf("tid.MustParse(%q)", id.String())
}
