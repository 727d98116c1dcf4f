package game

// Phase is the round lifecycle stage. The ordinal values double as the wire
// status codes, so they must not be reordered.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseLive
	PhaseResults
)

// Participant is one claimed lane, human or bot. Immutable for the life of a
// round once admitted.
type Participant struct {
	UUID     string `json:"uuid"`
	Ball     string `json:"ball"`
	Name     string `json:"name"`
	IsBot    bool   `json:"isBot"`
	JoinedAt int64  `json:"joinedAt"` // unix millis, ranking tie-break only
}

// PriceSample is one completed simulation tick.
type PriceSample struct {
	TMs   int64   `json:"tMs"`
	Price float64 `json:"price"`
	Lane  float64 `json:"lane"`
}

// LiveState is the simulation trace, meaningful only during PhaseLive.
// Samples are append-only; Velocity is the walk's momentum term carried
// between ticks and is never exposed to clients.
type LiveState struct {
	StartedAt  int64         `json:"startedAt"`
	P0         float64       `json:"p0"`
	Samples    []PriceSample `json:"samples"`
	Velocity   float64       `json:"velocity"`
	LastTickAt int64         `json:"lastTickAt"`
	FinalPrice float64       `json:"finalPrice"`
}

// StandingEntry is one participant's rank against a target lane.
type StandingEntry struct {
	UUID     string  `json:"uuid"`
	Ball     string  `json:"ball"`
	Name     string  `json:"name"`
	IsBot    bool    `json:"isBot"`
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
}

// ResultsState is populated exactly once, at the Live to Results transition.
type ResultsState struct {
	WinnerBall string          `json:"winnerBall"`
	WinnerName string          `json:"winnerName"`
	P0         float64         `json:"p0"`
	P30        float64         `json:"p30"`
	ChgPct     float64         `json:"chgPct"`
	ResolvedAt int64           `json:"resolvedAt"`
	Standings  []StandingEntry `json:"standings"`
}

// Round is the unit of play and the whole persisted aggregate.
type Round struct {
	RoundID      string        `json:"roundId"`
	Phase        Phase         `json:"phase"`
	Participants []Participant `json:"participants"`
	Live         LiveState     `json:"live"`
	Results      ResultsState  `json:"results"`
}

func newRound(id string) *Round {
	return &Round{
		RoundID:      id,
		Phase:        PhaseLobby,
		Participants: []Participant{},
	}
}

// clone deep-copies the aggregate so store readers and update drafts never
// alias the committed state.
func (r *Round) clone() *Round {
	out := *r
	out.Participants = make([]Participant, len(r.Participants))
	copy(out.Participants, r.Participants)
	if r.Live.Samples != nil {
		out.Live.Samples = make([]PriceSample, len(r.Live.Samples))
		copy(out.Live.Samples, r.Live.Samples)
	}
	if r.Results.Standings != nil {
		out.Results.Standings = make([]StandingEntry, len(r.Results.Standings))
		copy(out.Results.Standings, r.Results.Standings)
	}
	return &out
}

// valid rejects aggregates that parsed but cannot be played; the store treats
// them the same as corrupt state.
func (r *Round) valid() bool {
	if r.RoundID == "" {
		return false
	}
	switch r.Phase {
	case PhaseLobby:
		return true
	case PhaseLive, PhaseResults:
		return r.Live.StartedAt != 0 && r.Live.P0 > 0 && len(r.Live.Samples) > 0
	default:
		return false
	}
}

func (r *Round) participant(uuid string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].UUID == uuid {
			return &r.Participants[i]
		}
	}
	return nil
}

func (r *Round) laneClaimed(ball string) bool {
	for i := range r.Participants {
		if r.Participants[i].Ball == ball {
			return true
		}
	}
	return false
}
