package models

// UserPredictionStats represents a user's aggregate prediction performance.
// It is derived on demand from the user's resolved predictions and never
// stored as a source of truth.
type UserPredictionStats struct {
	UserID             string  `json:"user_id"`
	TotalPredictions   int     `json:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions"`
	Accuracy           float64 `json:"accuracy"`
	TotalPoints        int64   `json:"total_points"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	Rank               int     `json:"rank"`
}
