package domain

import "encoding/json"

// LeaderboardEntry is one ranked row. Username is nil for private accounts so
// the field is omitted entirely when serialised.
type LeaderboardEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	Username    *string
	Easy        int
	Medium      int
	Hard        int
	Total       int
	Score       int
}

type dayTally struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Total  int `json:"total"`
	Score  int `json:"score"`
}

// MarshalJSON nests the day's counts under past24h, the shape leaderboard
// clients read.
func (e LeaderboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rank        int      `json:"rank"`
		DisplayName string   `json:"displayName"`
		Username    *string  `json:"username,omitempty"`
		Past24h     dayTally `json:"past24h"`
	}{
		Rank:        e.Rank,
		DisplayName: e.DisplayName,
		Username:    e.Username,
		Past24h:     dayTally{Easy: e.Easy, Medium: e.Medium, Hard: e.Hard, Total: e.Total, Score: e.Score},
	})
}
