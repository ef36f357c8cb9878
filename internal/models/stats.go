package models

// HistoryPoint is one entry of the rolling activity window.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Stats is the persisted activity aggregate.
type Stats struct {
	Streak        int            `json:"streak"`
	TotalWorkouts int            `json:"totalWorkouts"`
	TotalMinutes  int            `json:"totalMinutes"`
	History       []HistoryPoint `json:"history"`
}

// Clone returns a deep copy so callers never share the History slice.
func (s Stats) Clone() Stats {
	out := s
	out.History = append([]HistoryPoint(nil), s.History...)
	return out
}
