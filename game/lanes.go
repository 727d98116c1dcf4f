package game

import "strconv"

// An Axis is the fixed, ordered set of lanes a round is played on. Lanes run
// from the far long side (B<n>) through the shared center pair (B0, S0) to the
// far short side (S<n>), so an axis with n graduated levels per side has
// 2n+2 lanes. Index 0 is the long extreme; the midpoint between B0 and S0 is
// the reference lane the anchor price sits on.
type Axis struct {
	lanes   []string
	index   map[string]int
	stepPct float64
}

// NewAxis builds an axis with levelsPerSide graduated lanes on each side and
// stepPct fractional price change per lane step.
func NewAxis(levelsPerSide int, stepPct float64) *Axis {
	lanes := make([]string, 0, 2*levelsPerSide+2)
	for i := levelsPerSide; i >= 0; i-- {
		lanes = append(lanes, "B"+strconv.Itoa(i))
	}
	for i := 0; i <= levelsPerSide; i++ {
		lanes = append(lanes, "S"+strconv.Itoa(i))
	}

	index := make(map[string]int, len(lanes))
	for i, id := range lanes {
		index[id] = i
	}

	return &Axis{
		lanes:   lanes,
		index:   index,
		stepPct: stepPct,
	}
}

// Capacity is the number of lanes, and therefore the participant cap.
func (a *Axis) Capacity() int {
	return len(a.lanes)
}

// Lanes returns the lane ids in axis order.
func (a *Axis) Lanes() []string {
	out := make([]string, len(a.lanes))
	copy(out, a.lanes)
	return out
}

// Mid is the reference lane index. Fractional for even lane counts.
func (a *Axis) Mid() float64 {
	return float64(len(a.lanes)-1) / 2
}

// LaneFor maps a lane id to its index. Unknown ids fall back to the midpoint
// rather than failing; callers treat the id set as closed.
func (a *Axis) LaneFor(id string) float64 {
	if idx, ok := a.index[id]; ok {
		return float64(idx)
	}
	return a.Mid()
}

// PriceToLane converts a price into a continuous lane position relative to
// the anchor p0. Higher prices map to lower indices (the long side).
func (a *Axis) PriceToLane(p0, price float64) float64 {
	offsetPct := price/p0 - 1
	return a.Mid() - offsetPct/a.stepPct
}

// LaneToPrice is the exact inverse of PriceToLane.
func (a *Axis) LaneToPrice(p0, lane float64) float64 {
	offsetPct := (a.Mid() - lane) * a.stepPct
	return p0 * (1 + offsetPct)
}

// IsLong reports whether a lane id sits on the long (B) side. Display
// grouping only; ranking never looks at sides.
func (a *Axis) IsLong(id string) bool {
	return len(id) > 0 && id[0] == 'B'
}

// FillOrder returns the deterministic bot fill order: the short side from its
// far end inward, then the long side from the center outward. Bots visibly
// occupy the far lanes first, distinct from the random order humans land in.
func (a *Axis) FillOrder() []string {
	out := make([]string, 0, len(a.lanes))
	for i := len(a.lanes) - 1; i >= 0; i-- {
		out = append(out, a.lanes[i])
	}
	return out
}
