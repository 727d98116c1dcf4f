package game

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"
)

// testClock is a hand-advanced clock so catch-up math is exact in tests.
type testClock struct {
	ms int64
}

func (c *testClock) now() time.Time {
	return time.UnixMilli(c.ms)
}

func (c *testClock) advance(d time.Duration) {
	c.ms += d.Milliseconds()
}

func newTestEngine(t *testing.T, tuning Tuning, seed int64) (*Engine, *testClock) {
	t.Helper()

	e := NewEngine(tuning, nil, nil)
	clk := &testClock{ms: 1_700_000_000_000}
	e.now = clk.now
	e.rng = rand.New(rand.NewSource(seed))
	return e, clk
}

func joinN(t *testing.T, e *Engine, n int) []JoinReceipt {
	t.Helper()

	receipts := make([]JoinReceipt, 0, n)
	for i := 0; i < n; i++ {
		r, err := e.Join(fmt.Sprintf("player-%d", i), "")
		if err != nil {
			t.Fatalf("join %d: unexpected error: %v", i, err)
		}
		receipts = append(receipts, r)
	}
	return receipts
}

func TestStatusLobbyView(t *testing.T) {
	e, _ := newTestEngine(t, DefaultTuning(), 1)
	joinN(t, e, 3)

	snap := e.Status()
	if snap.Status != PhaseLobby {
		t.Fatalf("want lobby status, got %d", snap.Status)
	}
	if snap.Capacity != 20 {
		t.Fatalf("want capacity 20, got %d", snap.Capacity)
	}
	if len(snap.Participants) != 3 {
		t.Fatalf("want 3 participants, got %d", len(snap.Participants))
	}
	if snap.Realtime != nil || snap.Results != nil {
		t.Fatalf("lobby snapshot must not carry live or results payloads")
	}
	if snap.RoundID == "" {
		t.Fatalf("round id must be set")
	}
}

func TestStatusLiveView(t *testing.T) {
	e, clk := newTestEngine(t, DefaultTuning(), 1)
	e.ForceStart()
	clk.advance(500 * time.Millisecond)

	snap := e.Status()
	if snap.Status != PhaseLive {
		t.Fatalf("want live status, got %d", snap.Status)
	}
	rt := snap.Realtime
	if rt == nil {
		t.Fatalf("live snapshot must carry realtime payload")
	}
	if len(rt.Samples) != 6 {
		t.Fatalf("want 6 samples after 500ms of 100ms ticks, got %d", len(rt.Samples))
	}
	if rt.ElapsedMs != 500 {
		t.Fatalf("want elapsedMs 500, got %d", rt.ElapsedMs)
	}
	if rt.Price != rt.Samples[len(rt.Samples)-1].Price {
		t.Fatalf("price must equal last sample price")
	}
	if len(rt.Standings) != 20 {
		t.Fatalf("want standings for all 20 participants, got %d", len(rt.Standings))
	}
}

func TestStatusReportsResultsAfterDuration(t *testing.T) {
	e, clk := newTestEngine(t, DefaultTuning(), 1)
	e.ForceStart()
	clk.advance(31 * time.Second)

	// The status query itself performs the final catch-up and resolution.
	snap := e.Status()
	if snap.Status != PhaseResults {
		t.Fatalf("want results status, got %d", snap.Status)
	}
	res := snap.Results
	if res == nil {
		t.Fatalf("results snapshot must carry results payload")
	}
	if res.WinnerBall == "" || res.WinnerName == "" {
		t.Fatalf("winner must be populated, got %+v", res)
	}
	if res.P30 <= 0 || res.P0 <= 0 {
		t.Fatalf("prices must be populated, got p0=%f p30=%f", res.P0, res.P30)
	}
	want := (res.P30 - res.P0) / res.P0
	if res.ChgPct != want {
		t.Fatalf("chgPct: want %f, got %f", want, res.ChgPct)
	}
	if len(res.Standings) != 20 {
		t.Fatalf("want 20 standings, got %d", len(res.Standings))
	}
}

func TestResetMidLiveDiscardsEverything(t *testing.T) {
	e, clk := newTestEngine(t, DefaultTuning(), 1)
	joinN(t, e, 4)
	before := e.Status().RoundID

	e.ForceStart()
	clk.advance(2 * time.Second)
	e.Advance()

	e.Reset()

	snap := e.Status()
	if snap.Status != PhaseLobby {
		t.Fatalf("after reset: want lobby, got %d", snap.Status)
	}
	if len(snap.Participants) != 0 {
		t.Fatalf("after reset: want no participants, got %d", len(snap.Participants))
	}
	if snap.RoundID == before {
		t.Fatalf("after reset: round id must change")
	}
}

func TestBotsCanWin(t *testing.T) {
	e, clk := newTestEngine(t, DefaultTuning(), 7)
	e.ForceStart() // all-bot round
	clk.advance(30 * time.Second)
	e.Advance()

	snap := e.Status()
	if snap.Status != PhaseResults {
		t.Fatalf("want results, got %d", snap.Status)
	}
	winner := snap.Results.Standings[0]
	if !winner.IsBot {
		t.Fatalf("all-bot round must be won by a bot, got %+v", winner)
	}
	if snap.Results.WinnerBall != winner.Ball {
		t.Fatalf("winner ball mismatch: %s vs %s", snap.Results.WinnerBall, winner.Ball)
	}
}

func TestResolutionHappensExactlyOnce(t *testing.T) {
	e, clk := newTestEngine(t, DefaultTuning(), 1)
	e.ForceStart()
	clk.advance(30 * time.Second)
	e.Advance()

	first := e.store.Get()
	if first.Phase != PhaseResults {
		t.Fatalf("want results phase, got %d", first.Phase)
	}

	clk.advance(10 * time.Second)
	e.Advance()
	e.Advance()

	second := e.store.Get()
	if second.Results.ResolvedAt != first.Results.ResolvedAt {
		t.Fatalf("resolvedAt changed on repeat advance: %d vs %d",
			first.Results.ResolvedAt, second.Results.ResolvedAt)
	}
	if len(second.Live.Samples) != len(first.Live.Samples) {
		t.Fatalf("samples grew after resolution: %d vs %d",
			len(first.Live.Samples), len(second.Live.Samples))
	}
}

func TestLobbyStatusPollsDoNotRewriteState(t *testing.T) {
	p := &countingPersister{}
	e := NewEngine(DefaultTuning(), p, nil)
	clk := &testClock{ms: 1_700_000_000_000}
	e.now = clk.now
	e.rng = rand.New(rand.NewSource(1))
	base := p.saves

	for i := 0; i < 5; i++ {
		e.Status()
	}
	if p.saves != base {
		t.Fatalf("lobby polls hit the persister %d times", p.saves-base)
	}

	// Between ticks the live trace doesn't grow either, so polls stay free.
	e.ForceStart()
	base = p.saves
	for i := 0; i < 5; i++ {
		e.Status()
	}
	if p.saves != base {
		t.Fatalf("between-tick polls hit the persister %d times", p.saves-base)
	}
}

// failingPersister loads nothing and refuses every save.
type failingPersister struct{}

func (failingPersister) Load() (*Round, error) { return nil, ErrNoState }
func (failingPersister) Save(*Round) error     { return errors.New("disk full") }

func TestPersistFailureIsReported(t *testing.T) {
	errs := make(chan error, 4)
	e := NewEngine(DefaultTuning(), failingPersister{}, errs)
	e.rng = rand.New(rand.NewSource(1))

	e.ForceStart()

	select {
	case err := <-errs:
		if err == nil {
			t.Fatalf("nil error reported")
		}
	default:
		t.Fatalf("persist failure never reached the error channel")
	}
}

func TestAnchorDrawnWithinSpread(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		e, _ := newTestEngine(t, DefaultTuning(), seed)
		e.ForceStart()

		r := e.store.Get()
		lo := e.tuning.BaseCenter - e.tuning.BaseSpread
		hi := e.tuning.BaseCenter + e.tuning.BaseSpread
		if r.Live.P0 < lo || r.Live.P0 > hi {
			t.Fatalf("seed %d: p0 %f outside [%f, %f]", seed, r.Live.P0, lo, hi)
		}
		if len(r.Live.Samples) != 1 || r.Live.Samples[0].TMs != 0 {
			t.Fatalf("seed %d: want single t=0 seed sample, got %+v", seed, r.Live.Samples)
		}
		if r.Live.Samples[0].Lane != e.axis.Mid() {
			t.Fatalf("seed %d: seed sample must sit on the center lane", seed)
		}
	}
}
