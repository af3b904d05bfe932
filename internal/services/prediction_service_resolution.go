package services

import (
	"context"
	"log"
	"sort"

	"ring-predictions/internal/models"

	"github.com/google/uuid"
)

// ResolvePrediction compares a locked prediction's picks against the actual
// outcome, scores it, and transitions it to resolved. Resolving an already
// resolved prediction fails with ErrAlreadyResolved and mutates nothing.
func (ps *PredictionService) ResolvePrediction(
	ctx context.Context,
	predictionID uuid.UUID,
	actualOutcome map[int]string,
) (*models.Prediction, error) {
	mu := ps.lockFor(predictionID)
	mu.Lock()
	defer mu.Unlock()

	prediction, err := ps.repo.GetPredictionByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if prediction.Status == models.PredictionStatusResolved {
		return nil, ErrAlreadyResolved
	}

	if prediction.Status != models.PredictionStatusLocked {
		return nil, &InvalidStateTransitionError{
			Current:   prediction.Status,
			Attempted: models.PredictionStatusResolved,
		}
	}

	// Every pick position needs an entry in the actual outcome
	var missing []int
	for _, pick := range prediction.Picks {
		if _, ok := actualOutcome[pick.Position]; !ok {
			missing = append(missing, pick.Position)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return nil, &IncompleteOutcomeError{MissingPositions: missing}
	}

	// Exact, case-sensitive match on the stored wrestler name
	correct := 0
	for i := range prediction.Picks {
		isWinner := prediction.Picks[i].WrestlerName == actualOutcome[prediction.Picks[i].Position]
		prediction.Picks[i].IsWinner = &isWinner
		if isWinner {
			correct++
		}
	}

	accuracyScore := float64(correct) / float64(len(prediction.Picks))

	// A single pick must be exactly right; a multi-pick prediction counts
	// as correct when the majority of picks landed.
	var isCorrect bool
	if len(prediction.Picks) == 1 {
		isCorrect = accuracyScore >= 1.0
	} else {
		isCorrect = accuracyScore >= ps.correctnessThreshold
	}

	var points int64
	if isCorrect {
		points = Score(accuracyScore, prediction.ConfidenceLevel, ps.basePoints)
	}

	now := ps.clock.Now()
	prediction.Status = models.PredictionStatusResolved
	prediction.AccuracyScore = &accuracyScore
	prediction.IsCorrect = &isCorrect
	prediction.PointsEarned = &points
	prediction.ResolvedAt = &now
	prediction.UpdatedAt = now

	if err := ps.repo.SaveResolution(ctx, prediction); err != nil {
		return nil, err
	}

	log.Printf("[PredictionService] Prediction %s resolved: %d/%d picks correct, score %.2f, %d points",
		predictionID, correct, len(prediction.Picks), accuracyScore, points)

	return prediction, nil
}
