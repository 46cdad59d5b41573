package valueobject

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

var (
	objectIDPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)
	objectIDCounter atomic.Uint32
)

// ObjectID is a 12 byte, 24 hex character identifier in the layout document databases use:
// 4 bytes seconds since epoch, 5 random bytes, 3 bytes counter.
type ObjectID struct {
	value string
}

// NewObjectID generates a new ObjectID for the current time.
func NewObjectID() (ObjectID, error) {
	var raw [12]byte

	binary.BigEndian.PutUint32(raw[0:4], uint32(time.Now().Unix()))

	if _, err := rand.Read(raw[4:9]); err != nil {
		return ObjectID{}, err
	}

	counter := objectIDCounter.Add(1)
	raw[9] = byte(counter >> 16)
	raw[10] = byte(counter >> 8)
	raw[11] = byte(counter)

	return ObjectID{value: hex.EncodeToString(raw[:])}, nil
}

// ParseObjectID validates 24 hex characters; upper case input is normalised to lower case.
func ParseObjectID(value string) (ObjectID, error) {
	normalised := strings.ToLower(strings.TrimSpace(value))

	if !objectIDPattern.MatchString(normalised) {
		return ObjectID{}, domain.NewValidationError("object id", "expected 24 hexadecimal characters, got "+value)
	}

	return ObjectID{value: normalised}, nil
}

func (o ObjectID) String() string {
	return o.value
}

func (o ObjectID) IsEmpty() bool {
	return o.value == ""
}

func (o ObjectID) Equals(other ObjectID) bool {
	return o.value == other.value
}

// Timestamp returns the creation second encoded in the id.
func (o ObjectID) Timestamp() time.Time {
	raw, err := hex.DecodeString(o.value)
	if err != nil || len(raw) < 4 {
		return time.Time{}
	}

	return time.Unix(int64(binary.BigEndian.Uint32(raw[0:4])), 0).UTC()
}

func (o ObjectID) MarshalText() ([]byte, error) {
	return []byte(o.value), nil
}

func (o *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectID(string(text))
	if err != nil {
		return err
	}

	*o = parsed

	return nil
}

var _ domain.Identifier = ObjectID{}
