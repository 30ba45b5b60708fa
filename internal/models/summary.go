package models

// DailySummary is the per-day nutrient rollup for a user. It is derived from
// live entries, and becomes authoritative once archived.
type DailySummary struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
	Archived bool   `json:"archived"`
}

// Add accumulates the macros of a into s.
func (s *DailySummary) Add(a EntryAggregate) {
	s.Calories += a.Calories
	s.Protein += a.Protein
	s.Carbs += a.Carbs
	s.Fat += a.Fat
}
