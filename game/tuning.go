package game

import "time"

// Tuning holds the knobs observed to vary between deployments: axis shape,
// clamp band, timing, and the anchor distribution. Everything else about the
// walk (decay, per-tick variance, step clamps) is fixed in sim.go.
type Tuning struct {
	LevelsPerSide int           // graduated lanes per side; capacity = 2n+2
	LaneStepPct   float64       // fractional price change per lane step
	TickInterval  time.Duration // one simulation step
	RoundDuration time.Duration // live phase length
	ClampBand     float64       // max excursion from p0, e.g. 0.015 = ±1.5%
	BaseCenter    float64       // anchor price center
	BaseSpread    float64       // symmetric jitter around the center
}

// DefaultTuning matches the reference deployment: 20 lanes at 0.1% per step,
// 100ms ticks over a 30s round, clamped to ±1.5% around 114568 ± 1000.
func DefaultTuning() Tuning {
	return Tuning{
		LevelsPerSide: 9,
		LaneStepPct:   0.001,
		TickInterval:  100 * time.Millisecond,
		RoundDuration: 30 * time.Second,
		ClampBand:     0.015,
		BaseCenter:    114568.00,
		BaseSpread:    1000.0,
	}
}
