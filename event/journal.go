package event

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ultiledger/go-marketledger/db"
	"github.com/ultiledger/go-marketledger/log"
)

var ErrUnknownType = errors.New("unknown event type")

const (
	bucket     = "EVENT"
	seqKey     = "meta/seq"
	recordsKey = "e/"
)

// Envelope is the serialized form of an event as stored in the
// journal and served to observers.
type Envelope struct {
	Seq     uint64          `json:"seq"`
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Name    string          `json:"name"`
	Time    int64           `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

// Decode restores the typed payload of the envelope.
func (e *Envelope) Decode() (Event, error) {
	ev, err := New(e.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(e.Payload, ev); err != nil {
		return nil, fmt.Errorf("decode %s payload failed: %v", e.Type, err)
	}
	return ev, nil
}

// Journal appends events to the database inside the transaction of
// the operation that produced them, so a rolled back operation leaves
// no events behind.
type Journal struct {
	database db.Database
	now      func() time.Time
}

func NewJournal(database db.Database) *Journal {
	j := &Journal{database: database, now: time.Now}
	if err := database.NewBucket(bucket); err != nil {
		log.Fatalf("create db bucket %s failed: %v", bucket, err)
	}
	return j
}

// Append writes ev as the next envelope of the journal.
func (j *Journal) Append(dt db.Tx, ev Event) (*Envelope, error) {
	seq, err := j.lastSeq(dt)
	if err != nil {
		return nil, err
	}
	seq++

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload failed: %v", ev.GetType(), err)
	}
	env := &Envelope{
		Seq:     seq,
		ID:      uuid.New().String(),
		Type:    ev.GetType(),
		Name:    ev.GetType().String(),
		Time:    j.now().UnixNano(),
		Payload: payload,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope failed: %v", err)
	}

	if err := dt.Put(bucket, recordKey(seq), b); err != nil {
		return nil, fmt.Errorf("save event failed: %v", err)
	}
	var sb [8]byte
	binary.BigEndian.PutUint64(sb[:], seq)
	if err := dt.Put(bucket, []byte(seqKey), sb[:]); err != nil {
		return nil, fmt.Errorf("save event seq failed: %v", err)
	}
	return env, nil
}

// Since returns the envelopes with a sequence number greater than
// from, in order, at most limit of them when limit is positive.
func (j *Journal) Since(getter db.Getter, from uint64, limit int) ([]*Envelope, error) {
	if from == math.MaxUint64 {
		return nil, nil
	}
	bs, err := getter.GetRange(bucket, []byte(recordsKey), recordKey(from+1), limit)
	if err != nil {
		return nil, fmt.Errorf("load events failed: %v", err)
	}
	envs := make([]*Envelope, 0, len(bs))
	for _, b := range bs {
		env := &Envelope{}
		if err := json.Unmarshal(b, env); err != nil {
			return nil, fmt.Errorf("decode envelope failed: %v", err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// LastSeq returns the sequence number of the newest event.
func (j *Journal) LastSeq(getter db.Getter) (uint64, error) {
	return j.lastSeq(getter)
}

func (j *Journal) lastSeq(getter db.Getter) (uint64, error) {
	b, err := getter.Get(bucket, []byte(seqKey))
	if err != nil {
		return 0, fmt.Errorf("get event seq failed: %v", err)
	}
	if b == nil {
		return 0, nil
	}
	if len(b) != 8 {
		return 0, errors.New("corrupted event seq")
	}
	return binary.BigEndian.Uint64(b), nil
}

// Zero padded so key order matches sequence order.
func recordKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", recordsKey, seq))
}

// Recorder binds a journal to one transaction and remembers what
// was appended so the caller can report it.
type Recorder struct {
	journal *Journal
	dt      db.Tx
	Emitted []*Envelope
}

func NewRecorder(j *Journal, dt db.Tx) *Recorder {
	return &Recorder{journal: j, dt: dt}
}

// Emit appends ev to the journal.
func (r *Recorder) Emit(ev Event) error {
	env, err := r.journal.Append(r.dt, ev)
	if err != nil {
		return err
	}
	r.Emitted = append(r.Emitted, env)
	return nil
}

// Emitter is what operations write their events to.
type Emitter interface {
	Emit(ev Event) error
}
