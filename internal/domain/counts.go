package domain

// Counts holds solved-problem counts split by difficulty. Depending on where it
// is used it is either a cumulative lifetime total or a per-day increment.
type Counts struct {
	Easy   int `json:"easy" db:"easy"`
	Medium int `json:"medium" db:"medium"`
	Hard   int `json:"hard" db:"hard"`
}

// Score weights per difficulty.
const (
	EasyWeight   = 2
	MediumWeight = 3
	HardWeight   = 4
)

func (c Counts) Total() int {
	return c.Easy + c.Medium + c.Hard
}

// Score is the difficulty-weighted score used by the leaderboard.
func (c Counts) Score() int {
	return EasyWeight*c.Easy + MediumWeight*c.Medium + HardWeight*c.Hard
}

func (c Counts) Equal(o Counts) bool {
	return c.Easy == o.Easy && c.Medium == o.Medium && c.Hard == o.Hard
}

// IncrementSince returns the progress made since prev. A difficulty whose count
// went down is reported as zero, never negative.
func (c Counts) IncrementSince(prev Counts) Counts {
	return Counts{
		Easy:   clampZero(c.Easy - prev.Easy),
		Medium: clampZero(c.Medium - prev.Medium),
		Hard:   clampZero(c.Hard - prev.Hard),
	}
}

// DeltaSince returns the signed difference c - prev.
func (c Counts) DeltaSince(prev Counts) Delta {
	return Delta{
		Easy:   c.Easy - prev.Easy,
		Medium: c.Medium - prev.Medium,
		Hard:   c.Hard - prev.Hard,
	}
}

// Delta is a signed per-difficulty difference. Values can be negative when the
// upstream source corrected its totals downwards.
type Delta struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

func (d Delta) Total() int {
	return d.Easy + d.Medium + d.Hard
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
