package game

// Snapshot is the discriminated status view clients poll: exactly one of the
// phase-specific payloads is set, matching Status. The wire names mirror the
// persisted round so the browser and the state file agree on shapes.
type Snapshot struct {
	Status       Phase             `json:"status"`
	RoundID      string            `json:"roundId"`
	Capacity     int               `json:"capacity,omitempty"`
	Participants []ParticipantView `json:"participants,omitempty"`
	Realtime     *RealtimeView     `json:"realtime_price,omitempty"`
	Results      *ResultsView      `json:"results,omitempty"`
}

type ParticipantView struct {
	UUID  string `json:"uuid"`
	Ball  string `json:"ball"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

// RealtimeView carries the full live trace plus the provisional standings
// against the latest sample.
type RealtimeView struct {
	Price     float64         `json:"price"`
	P0        float64         `json:"p0"`
	StartedAt int64           `json:"startedAt"`
	ElapsedMs int64           `json:"elapsedMs"`
	Samples   []PriceSample   `json:"samples"`
	Standings []StandingEntry `json:"standings"`
}

type ResultsView struct {
	WinnerBall string          `json:"winnerBall"`
	WinnerName string          `json:"winnerName"`
	P0         float64         `json:"p0"`
	P30        float64         `json:"p30"`
	ChgPct     float64         `json:"chgPct"`
	Standings  []StandingEntry `json:"standings"`
}

// Status returns the snapshot for the current phase, performing a catch-up
// pass first so the view is a function of wall-clock time rather than of
// whether the background ticker has run. The same call that crosses the
// duration boundary therefore reports Results directly.
func (e *Engine) Status() Snapshot {
	var snap Snapshot

	err := e.store.Update(func(r *Round) error {
		e.catchUp(r)

		snap = Snapshot{
			Status:  r.Phase,
			RoundID: r.RoundID,
		}

		switch r.Phase {
		case PhaseLobby:
			snap.Capacity = e.axis.Capacity()
			snap.Participants = make([]ParticipantView, 0, len(r.Participants))
			for _, p := range r.Participants {
				snap.Participants = append(snap.Participants, ParticipantView{
					UUID:  p.UUID,
					Ball:  p.Ball,
					Name:  p.Name,
					IsBot: p.IsBot,
				})
			}

		case PhaseLive:
			latest := r.Live.Samples[len(r.Live.Samples)-1]
			samples := make([]PriceSample, len(r.Live.Samples))
			copy(samples, r.Live.Samples)
			snap.Realtime = &RealtimeView{
				Price:     latest.Price,
				P0:        r.Live.P0,
				StartedAt: r.Live.StartedAt,
				ElapsedMs: latest.TMs,
				Samples:   samples,
				Standings: e.rank(r.Participants, latest.Lane),
			}

		case PhaseResults:
			standings := make([]StandingEntry, len(r.Results.Standings))
			copy(standings, r.Results.Standings)
			snap.Results = &ResultsView{
				WinnerBall: r.Results.WinnerBall,
				WinnerName: r.Results.WinnerName,
				P0:         r.Results.P0,
				P30:        r.Results.P30,
				ChgPct:     r.Results.ChgPct,
				Standings:  standings,
			}
		}
		return nil
	})
	if err != nil {
		e.report(err)
	}

	return snap
}
