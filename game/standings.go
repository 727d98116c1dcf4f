package game

import (
	"math"
	"sort"
)

// rank totally orders participants by distance between their lane and the
// target lane. Ties break on earlier join time, then insertion order via the
// stable sort. Recomputed from scratch on every call; rosters top out at a
// few dozen entries.
func (e *Engine) rank(participants []Participant, targetLane float64) []StandingEntry {
	type ranked struct {
		entry    StandingEntry
		joinedAt int64
	}

	rows := make([]ranked, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, ranked{
			entry: StandingEntry{
				UUID:     p.UUID,
				Ball:     p.Ball,
				Name:     p.Name,
				IsBot:    p.IsBot,
				Distance: math.Abs(e.axis.LaneFor(p.Ball) - targetLane),
			},
			joinedAt: p.JoinedAt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].entry.Distance != rows[j].entry.Distance {
			return rows[i].entry.Distance < rows[j].entry.Distance
		}
		return rows[i].joinedAt < rows[j].joinedAt
	})

	out := make([]StandingEntry, len(rows))
	for i, row := range rows {
		row.entry.Position = i + 1
		out[i] = row.entry
	}
	return out
}

// Placement returns uuid's current standing, catching the simulation up
// first. During Live it ranks against the latest sample's lane; at Results it
// reads the final standings. Unknown uuids and lobby-phase lookups report
// not ranked rather than erroring.
func (e *Engine) Placement(uuid string) (StandingEntry, bool) {
	var (
		entry StandingEntry
		found bool
	)

	err := e.store.Update(func(r *Round) error {
		e.catchUp(r)

		var standings []StandingEntry
		switch r.Phase {
		case PhaseLive:
			latest := r.Live.Samples[len(r.Live.Samples)-1]
			standings = e.rank(r.Participants, latest.Lane)
		case PhaseResults:
			standings = r.Results.Standings
		default:
			return nil
		}

		for _, s := range standings {
			if s.UUID == uuid {
				entry = s
				found = true
				break
			}
		}
		return nil
	})
	if err != nil {
		e.report(err)
	}

	return entry, found
}
