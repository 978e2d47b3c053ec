package odm

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// ObjectId is a 12 byte document identifier: a 4 byte big endian unix
// timestamp, 5 bytes of per-process randomness and a 3 byte counter.
// Its hex form sorts in creation order within one process.
type ObjectId [12]byte

var (
	processUnique = func() [5]byte {
		var b [5]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic(fmt.Errorf("cannot initialize object id generator: %w", err))
		}
		return b
	}()
	objectIDCounter = func() *atomic.Uint32 {
		var b [4]byte
		_, _ = rand.Read(b[:])
		c := new(atomic.Uint32)
		c.Store(binary.BigEndian.Uint32(b[:]) & 0x00ffffff)
		return c
	}()
)

// NewObjectId generates a new identifier for the current time.
func NewObjectId() ObjectId {
	return newObjectIdAt(time.Now())
}

func newObjectIdAt(t time.Time) ObjectId {
	var id ObjectId
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], processUnique[:])
	c := objectIDCounter.Add(1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

// ParseObjectId parses the 24 character hex form.
func ParseObjectId(s string) (ObjectId, error) {
	var id ObjectId
	if len(s) != 24 {
		return id, fmt.Errorf("invalid object id %q: expected 24 hex characters", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return id, nil
}

// Timestamp returns the creation time encoded in the identifier.
func (id ObjectId) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0)
}

func (id ObjectId) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectId) String() string {
	return id.Hex()
}

func (id ObjectId) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

func (id *ObjectId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseObjectId(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
