package game

import (
	"math/rand"
	"time"
)

// Engine drives the round state machine: admission while the lobby is open,
// the price walk while live, and ranking at resolution. All state lives in
// the store; the engine itself only carries configuration and the random and
// clock seams, so concurrent callers are serialized by the store's update
// path and nothing else needs locking.
type Engine struct {
	axis   *Axis
	store  *Store
	tuning Tuning
	errs   chan<- error

	// seams for tests; rng is only touched inside store updates, which are
	// mutually exclusive, so an unsynchronized rand.Rand is safe here
	now func() time.Time
	rng *rand.Rand
}

// NewEngine wires an engine to its durable store. Failures with nowhere else
// to go (persist errors during catch-up or reset) are forwarded to errs; a
// nil channel drops them.
func NewEngine(tuning Tuning, persist Persister, errs chan<- error) *Engine {
	return &Engine{
		axis:   NewAxis(tuning.LevelsPerSide, tuning.LaneStepPct),
		store:  NewStore(persist),
		tuning: tuning,
		errs:   errs,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// report forwards a background failure to the error channel without ever
// blocking on it.
func (e *Engine) report(err error) {
	if e.errs == nil || err == nil {
		return
	}
	select {
	case e.errs <- err:
	default:
	}
}

func (e *Engine) nowMs() int64 {
	return e.now().UnixMilli()
}

// Reset discards the current round entirely and opens a fresh lobby under a
// new round id. The only way back from Results.
func (e *Engine) Reset() {
	if _, err := e.store.Reset(); err != nil {
		e.report(err)
	}
}

// Advance performs a catch-up pass, appending any simulation ticks implied by
// elapsed wall-clock time and resolving the round once the duration is up.
// Safe to call in any phase; outside Live it does nothing. The background
// ticker calls this for liveness, but every status query also catches up on
// its own, so correctness never depends on the ticker.
func (e *Engine) Advance() {
	err := e.store.Update(func(r *Round) error {
		e.catchUp(r)
		return nil
	})
	if err != nil {
		e.report(err)
	}
}

// startLive transitions Lobby to Live: draws the anchor price, seeds the
// trace with the t=0 sample at the center lane, and clears any stale results.
func (e *Engine) startLive(r *Round) {
	if r.Phase != PhaseLobby {
		return
	}

	p0 := e.tuning.BaseCenter + (e.rng.Float64()*2-1)*e.tuning.BaseSpread
	now := e.nowMs()

	r.Phase = PhaseLive
	r.Live = LiveState{
		StartedAt:  now,
		P0:         p0,
		Samples:    []PriceSample{{TMs: 0, Price: p0, Lane: e.axis.Mid()}},
		Velocity:   0,
		LastTickAt: now,
	}
	r.Results = ResultsState{P0: p0}
}

// conclude transitions Live to Results, ranking every participant against the
// lane implied by the final sample. Runs exactly once per round; the winner
// is simply the rank-1 standing, bot or not.
func (e *Engine) conclude(r *Round) {
	if r.Phase != PhaseLive || len(r.Live.Samples) == 0 {
		return
	}

	final := r.Live.Samples[len(r.Live.Samples)-1]
	standings := e.rank(r.Participants, final.Lane)

	r.Phase = PhaseResults
	r.Live.FinalPrice = final.Price
	r.Results = ResultsState{
		P0:         r.Live.P0,
		P30:        final.Price,
		ChgPct:     (final.Price - r.Live.P0) / r.Live.P0,
		ResolvedAt: e.nowMs(),
		Standings:  standings,
	}
	if len(standings) > 0 {
		r.Results.WinnerBall = standings[0].Ball
		r.Results.WinnerName = standings[0].Name
	}
}
