package game

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"sync"
)

// ErrNoState is returned by a Persister when no round has been saved yet.
var ErrNoState = errors.New("no saved round state")

// A Persister is the durable home of the round aggregate. Load failures of
// any kind (absence, unreadable file, malformed JSON) are recovered by the
// store, never surfaced to callers.
type Persister interface {
	Load() (*Round, error)
	Save(*Round) error
}

// FilePersister stores the round as a single pretty-printed JSON document.
type FilePersister struct {
	Path string
}

func (f *FilePersister) Load() (*Round, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, err
	}

	var r Round
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("malformed round state: %w", err)
	}
	return &r, nil
}

func (f *FilePersister) Save(r *Round) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, raw, 0644)
}

// Store is the single source of truth for the round. Every mutation funnels
// through Update, which serializes concurrent callers, so readers see either
// the pre- or post-state of an update, never an intermediate.
type Store struct {
	mu      sync.Mutex
	round   *Round
	persist Persister
}

// NewStore loads the persisted round, substituting a fresh lobby-phase round
// when the backing state is absent or corrupt. A nil persister keeps the
// round in memory only.
func NewStore(persist Persister) *Store {
	s := &Store{persist: persist}

	if persist != nil {
		if r, err := persist.Load(); err == nil && r.valid() {
			s.round = r
			return s
		}
	}

	s.round = newRound(newRoundID())
	if persist != nil {
		_ = persist.Save(s.round)
	}
	return s
}

// Get returns a defensive copy of the current round.
func (s *Store) Get() Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.round.clone()
}

// Update runs fn against a draft copy of the round and commits it if fn
// succeeds. On error the committed state is untouched, so failed operations
// leave no partial writes behind. The draft only reaches the persister when
// fn actually changed something; read-mostly passes (status polls between
// ticks, placement lookups) cost no disk writes.
func (s *Store) Update(fn func(*Round) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.round.clone()
	if err := fn(draft); err != nil {
		return err
	}
	dirty := !reflect.DeepEqual(draft, s.round)
	s.round = draft

	if dirty && s.persist != nil {
		if err := s.persist.Save(s.round); err != nil {
			return fmt.Errorf("persist round: %w", err)
		}
	}
	return nil
}

// Reset replaces the round wholesale with a fresh lobby-phase round under a
// new round id, and returns a copy of it.
func (s *Store) Reset() (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.round = newRound(newRoundID())
	if s.persist != nil {
		if err := s.persist.Save(s.round); err != nil {
			return *s.round.clone(), fmt.Errorf("persist round: %w", err)
		}
	}
	return *s.round.clone(), nil
}

const roundIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newRoundID generates a crypto-random 8-char round id.
func newRoundID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	out := make([]byte, len(buf))
	for i := range out {
		out[i] = roundIDAlphabet[int(buf[i])%len(roundIDAlphabet)]
	}
	return string(out)
}
