package game

import "math"

// Fixed random-walk parameters. The decay makes consecutive steps correlate
// into visible trends instead of white noise; the step clamps keep the walk
// from stalling or jumping, and the band clamp in stepPrice reflects the
// velocity inward so the price never pins against a wall.
const (
	velocityDecay = 0.9
	tickVariance  = 0.0001 // per-tick uniform draw in ±this
	minStepPct    = 0.0001 // 0.01%
	maxStepPct    = 0.0005 // 0.05%
)

// catchUp extends the live trace with every whole-tick sample implied by
// elapsed wall-clock time, then resolves the round when the duration is up.
// The simulation is a pure function of elapsed time plus the persisted trace,
// so any caller can drive it; the store's update path serializes racing
// callers and only one of them appends each tick.
func (e *Engine) catchUp(r *Round) {
	if r.Phase != PhaseLive || r.Live.StartedAt == 0 || r.Live.P0 == 0 || len(r.Live.Samples) == 0 {
		return
	}

	tickMs := e.tuning.TickInterval.Milliseconds()
	durationMs := e.tuning.RoundDuration.Milliseconds()

	now := e.nowMs()
	elapsed := now - r.Live.StartedAt
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > durationMs {
		elapsed = durationMs
	}

	last := r.Live.Samples[len(r.Live.Samples)-1]
	nextTick := last.TMs + tickMs
	price := last.Price
	vel := r.Live.Velocity

	for nextTick <= elapsed {
		price, vel = e.stepPrice(r.Live.P0, price, vel)
		r.Live.Samples = append(r.Live.Samples, PriceSample{
			TMs:   nextTick,
			Price: price,
			Lane:  e.axis.PriceToLane(r.Live.P0, price),
		})
		r.Live.LastTickAt = now
		nextTick += tickMs
	}
	r.Live.Velocity = vel

	if elapsed >= durationMs {
		e.conclude(r)
	}
}

// stepPrice advances the walk by one tick: decay the momentum, mix in fresh
// variance, clamp the step magnitude, apply it multiplicatively, and clamp
// the result into the allowed band around the anchor.
func (e *Engine) stepPrice(p0, prev, vel float64) (float64, float64) {
	variance := (e.rng.Float64()*2 - 1) * tickVariance
	vel = vel*velocityDecay + variance

	step := math.Abs(vel)
	if step > maxStepPct {
		step = maxStepPct
	}
	if step < minStepPct {
		step = minStepPct
	}

	dir := 1.0
	switch {
	case vel < 0:
		dir = -1
	case vel == 0:
		if e.rng.Float64() < 0.5 {
			dir = -1
		}
	}

	price := prev * (1 + dir*step)

	min := p0 * (1 - e.tuning.ClampBand)
	max := p0 * (1 + e.tuning.ClampBand)
	if price < min {
		price = min
		vel = math.Abs(vel)
	}
	if price > max {
		price = max
		vel = -math.Abs(vel)
	}

	return price, vel
}
