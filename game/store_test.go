package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// countingPersister tracks how often the store reaches for the disk.
type countingPersister struct {
	saves int
	round *Round
}

func (c *countingPersister) Load() (*Round, error) {
	if c.round == nil {
		return nil, ErrNoState
	}
	return c.round.clone(), nil
}

func (c *countingPersister) Save(r *Round) error {
	c.saves++
	c.round = r.clone()
	return nil
}

func TestFilePersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	p := &FilePersister{Path: path}

	want := newRound("abc123")
	want.Participants = append(want.Participants, Participant{
		UUID: "u1", Ball: "B4", Name: "B4", JoinedAt: 42,
	})

	if err := p.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.RoundID != want.RoundID || len(got.Participants) != 1 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.Participants[0] != want.Participants[0] {
		t.Fatalf("participant mismatch: %+v", got.Participants[0])
	}
}

func TestFilePersisterMissingFile(t *testing.T) {
	p := &FilePersister{Path: filepath.Join(t.TempDir(), "missing.json")}

	if _, err := p.Load(); !errors.Is(err, ErrNoState) {
		t.Fatalf("want ErrNoState, got %v", err)
	}
}

func TestStoreSelfHealsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	p := &FilePersister{Path: path}
	s := NewStore(p)

	r := s.Get()
	if r.Phase != PhaseLobby || len(r.Participants) != 0 || r.RoundID == "" {
		t.Fatalf("want a fresh default round, got %+v", r)
	}

	// The corrupt file must have been overwritten with valid state.
	if _, err := p.Load(); err != nil {
		t.Fatalf("state file not healed: %v", err)
	}
}

func TestStoreRejectsUnplayableAggregate(t *testing.T) {
	// Parses fine, but claims to be live with no trace: treated as corrupt.
	path := filepath.Join(t.TempDir(), "state.json")
	blob := []byte(`{"roundId":"stale","phase":1,"participants":[],"live":{},"results":{}}`)
	if err := os.WriteFile(path, blob, 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s := NewStore(&FilePersister{Path: path})

	r := s.Get()
	if r.Phase != PhaseLobby || r.RoundID == "stale" {
		t.Fatalf("want a fresh round over the unplayable one, got %+v", r)
	}
}

func TestStoreResumesPersistedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	p := &FilePersister{Path: path}

	first := NewStore(p)
	err := first.Update(func(r *Round) error {
		r.Participants = append(r.Participants, Participant{UUID: "u1", Ball: "S3"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	id := first.Get().RoundID

	second := NewStore(p)
	r := second.Get()
	if r.RoundID != id {
		t.Fatalf("round id not resumed: %s vs %s", r.RoundID, id)
	}
	if len(r.Participants) != 1 || r.Participants[0].UUID != "u1" {
		t.Fatalf("participants not resumed: %+v", r.Participants)
	}
}

func TestUpdateErrorDiscardsDraft(t *testing.T) {
	s := NewStore(nil)
	boom := errors.New("boom")

	err := s.Update(func(r *Round) error {
		r.Participants = append(r.Participants, Participant{UUID: "ghost"})
		r.Phase = PhaseLive
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want mutator error surfaced, got %v", err)
	}

	r := s.Get()
	if len(r.Participants) != 0 || r.Phase != PhaseLobby {
		t.Fatalf("failed update leaked state: %+v", r)
	}
}

func TestUpdateSkipsPersistWhenClean(t *testing.T) {
	p := &countingPersister{}
	s := NewStore(p)
	base := p.saves

	err := s.Update(func(r *Round) error {
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.saves != base {
		t.Fatalf("read-only update hit the persister: %d saves", p.saves-base)
	}

	err = s.Update(func(r *Round) error {
		r.Participants = append(r.Participants, Participant{UUID: "u1", Ball: "B3"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.saves != base+1 {
		t.Fatalf("dirty update: want exactly one save, got %d", p.saves-base)
	}
}

func TestGetReturnsDefensiveCopy(t *testing.T) {
	s := NewStore(nil)
	_ = s.Update(func(r *Round) error {
		r.Participants = append(r.Participants, Participant{UUID: "u1", Ball: "B2"})
		return nil
	})

	r := s.Get()
	r.Participants[0].Ball = "tampered"
	r.Phase = PhaseResults

	if got := s.Get(); got.Participants[0].Ball != "B2" || got.Phase != PhaseLobby {
		t.Fatalf("store state mutated through a copy: %+v", got)
	}
}

func TestResetIssuesNewRoundID(t *testing.T) {
	s := NewStore(nil)
	before := s.Get().RoundID

	after, err := s.Reset()
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if after.RoundID == before {
		t.Fatalf("reset must issue a new round id")
	}
	if after.Phase != PhaseLobby || len(after.Participants) != 0 {
		t.Fatalf("reset must install a fresh lobby round: %+v", after)
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	s := NewStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Update(func(r *Round) error {
				r.Participants = append(r.Participants, Participant{
					UUID: fmt.Sprintf("u-%d", n),
				})
				return nil
			})
		}(i)
	}
	wg.Wait()

	if got := len(s.Get().Participants); got != 50 {
		t.Fatalf("lost updates: want 50 participants, got %d", got)
	}
}
