package services

import "math"

// DefaultBasePointsPerConfidenceUnit is the points multiplier applied per
// confidence level unit when a prediction resolves correctly.
const DefaultBasePointsPerConfidenceUnit = 10

// Score converts an accuracy score and confidence level into points.
// Zero accuracy yields zero points regardless of confidence; confidence
// only amplifies correct calls, it never penalizes wrong ones.
func Score(accuracyScore float64, confidenceLevel int, basePointsPerConfidenceUnit int) int64 {
	if accuracyScore <= 0 {
		return 0
	}
	return int64(math.Round(accuracyScore * float64(confidenceLevel) * float64(basePointsPerConfidenceUnit)))
}
