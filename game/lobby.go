package game

import (
	"errors"
	"strings"
)

// ErrGameFull is returned by Join when no lane remains for a new participant.
// Once a round is live every lane is claimed, so joins arriving after the
// start race resolve to this as well.
var ErrGameFull = errors.New("game full")

// JoinReceipt is what a joining client needs back: its assigned lane.
type JoinReceipt struct {
	Ball string `json:"ball"`
	Name string `json:"name"`
}

// Join admits uuid to the current round. Idempotent: a uuid that already
// holds a lane gets the same assignment back in any phase, so reconnecting
// clients can retry freely. New admissions pick uniformly among the unclaimed
// lanes; the join that fills the last lane starts the round in the same
// atomic update.
func (e *Engine) Join(uuid, name string) (JoinReceipt, error) {
	var receipt JoinReceipt

	err := e.store.Update(func(r *Round) error {
		if p := r.participant(uuid); p != nil {
			receipt = JoinReceipt{Ball: p.Ball, Name: p.Name}
			return nil
		}
		if r.Phase != PhaseLobby {
			return ErrGameFull
		}

		available := e.unclaimedLanes(r, e.axis.Lanes())
		if len(available) == 0 {
			return ErrGameFull
		}

		ball := available[e.rng.Intn(len(available))]
		if name == "" {
			name = ball
		}
		r.Participants = append(r.Participants, Participant{
			UUID:     uuid,
			Ball:     ball,
			Name:     name,
			JoinedAt: e.nowMs(),
		})
		receipt = JoinReceipt{Ball: ball, Name: name}

		if len(r.Participants) >= e.axis.Capacity() {
			e.startLive(r)
		}
		return nil
	})

	return receipt, err
}

// ForceStart fills every unclaimed lane with a bot and starts the round.
// Bots take the far lanes first in a fixed order, so a partially full lobby
// always produces the same roster shape. Idempotent, and a no-op outside the
// lobby phase.
func (e *Engine) ForceStart() {
	err := e.store.Update(func(r *Round) error {
		if r.Phase != PhaseLobby {
			return nil
		}

		now := e.nowMs()
		for i, ball := range e.unclaimedLanes(r, e.axis.FillOrder()) {
			uuid := "bot-" + strings.ToLower(ball)
			if r.participant(uuid) != nil {
				continue
			}
			r.Participants = append(r.Participants, Participant{
				UUID:     uuid,
				Ball:     ball,
				Name:     ball,
				IsBot:    true,
				JoinedAt: now + int64(i),
			})
		}

		e.startLive(r)
		return nil
	})
	if err != nil {
		e.report(err)
	}
}

func (e *Engine) unclaimedLanes(r *Round, order []string) []string {
	out := make([]string, 0, len(order))
	for _, ball := range order {
		if !r.laneClaimed(ball) {
			out = append(out, ball)
		}
	}
	return out
}
