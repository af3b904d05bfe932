package services

import (
	"context"
	"log"
	"strings"
	"sync"

	"ring-predictions/internal/models"
	"ring-predictions/internal/repository"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// lockStripes is the number of mutexes operations on prediction ids are
// striped across. Operations on the same id always hit the same stripe.
const lockStripes = 64

type PredictionService struct {
	repo                 *repository.Repository
	clock                clockwork.Clock
	basePoints           int
	correctnessThreshold float64
	locks                [lockStripes]sync.Mutex
}

func NewPredictionService(
	repo *repository.Repository,
	clock clockwork.Clock,
	basePoints int,
	correctnessThreshold float64,
) *PredictionService {
	if basePoints <= 0 {
		basePoints = DefaultBasePointsPerConfidenceUnit
	}
	if correctnessThreshold <= 0 || correctnessThreshold > 1 {
		correctnessThreshold = 0.5
	}
	return &PredictionService{
		repo:                 repo,
		clock:                clock,
		basePoints:           basePoints,
		correctnessThreshold: correctnessThreshold,
	}
}

// lockFor returns the stripe mutex serializing operations on a prediction id
func (ps *PredictionService) lockFor(predictionID uuid.UUID) *sync.Mutex {
	return &ps.locks[int(predictionID[0])%lockStripes]
}

// CreatePrediction validates the request and creates a new draft prediction
func (ps *PredictionService) CreatePrediction(
	ctx context.Context,
	userID string,
	req *models.CreatePredictionRequest,
) (*models.Prediction, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len(req.Picks) == 0 {
		return nil, &ValidationError{Field: "picks", Message: "must not be empty"}
	}
	if req.ConfidenceLevel < 1 || req.ConfidenceLevel > 10 {
		return nil, &ValidationError{Field: "confidence_level", Message: "must be between 1 and 10"}
	}
	if !req.PredictionType.Valid() {
		return nil, &ValidationError{Field: "prediction_type", Message: "unknown prediction type"}
	}
	if !req.Deadline.After(ps.clock.Now()) {
		return nil, &ValidationError{Field: "deadline", Message: "must be in the future"}
	}

	// Positions must be unique and contiguous from 0
	seen := make(map[int]bool, len(req.Picks))
	for _, pick := range req.Picks {
		if pick.Position < 0 || pick.Position >= len(req.Picks) {
			return nil, &ValidationError{Field: "picks", Message: "positions must be contiguous from 0"}
		}
		if seen[pick.Position] {
			return nil, &ValidationError{Field: "picks", Message: "duplicate pick position"}
		}
		if strings.TrimSpace(pick.WrestlerName) == "" {
			return nil, &ValidationError{Field: "picks", Message: "wrestler name must not be empty"}
		}
		seen[pick.Position] = true
	}

	now := ps.clock.Now()
	prediction := &models.Prediction{
		ID:              uuid.New(),
		Title:           req.Title,
		Description:     req.Description,
		UserID:          userID,
		PredictionType:  req.PredictionType,
		ConfidenceLevel: req.ConfidenceLevel,
		Deadline:        req.Deadline,
		IsPublic:        req.IsPublic,
		EventID:         req.EventID,
		Status:          models.PredictionStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, pick := range req.Picks {
		prediction.Picks = append(prediction.Picks, models.Pick{
			ID:           uuid.New(),
			PredictionID: prediction.ID,
			WrestlerName: pick.WrestlerName,
			ImageURL:     pick.ImageURL,
			Position:     pick.Position,
			CreatedAt:    now,
		})
	}

	if err := ps.repo.CreatePrediction(ctx, prediction); err != nil {
		return nil, err
	}

	log.Printf("[PredictionService] Created prediction %s for user %s (%d picks)",
		prediction.ID, userID, len(prediction.Picks))

	return prediction, nil
}

// SubmitPrediction transitions a draft prediction to submitted. Fails if
// the deadline has already passed.
func (ps *PredictionService) SubmitPrediction(
	ctx context.Context,
	predictionID uuid.UUID,
	userID string,
) (*models.Prediction, error) {
	mu := ps.lockFor(predictionID)
	mu.Lock()
	defer mu.Unlock()

	prediction, err := ps.repo.GetPredictionByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if prediction.UserID != userID {
		return nil, ErrNotOwner
	}

	if prediction.Status != models.PredictionStatusDraft {
		return nil, &InvalidStateTransitionError{
			Current:   prediction.Status,
			Attempted: models.PredictionStatusSubmitted,
		}
	}

	now := ps.clock.Now()
	if !now.Before(prediction.Deadline) {
		return nil, ErrDeadlinePassed
	}

	prediction.Status = models.PredictionStatusSubmitted
	prediction.SubmittedAt = &now
	prediction.UpdatedAt = now

	if err := ps.repo.UpdatePrediction(ctx, prediction); err != nil {
		return nil, err
	}

	log.Printf("[PredictionService] Prediction %s submitted by user %s", predictionID, userID)

	return prediction, nil
}

// CancelPrediction cancels a draft or submitted prediction. Once locked or
// resolved, a prediction is in play and cannot be withdrawn.
func (ps *PredictionService) CancelPrediction(
	ctx context.Context,
	predictionID uuid.UUID,
	userID string,
) (*models.Prediction, error) {
	mu := ps.lockFor(predictionID)
	mu.Lock()
	defer mu.Unlock()

	prediction, err := ps.repo.GetPredictionByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if prediction.UserID != userID {
		return nil, ErrNotOwner
	}

	now := ps.clock.Now()

	// A cancel racing the deadline sweep loses: if the deadline has passed,
	// the lock transition is applied first and the cancel is rejected.
	if prediction.Status == models.PredictionStatusSubmitted && !now.Before(prediction.Deadline) {
		prediction.Status = models.PredictionStatusLocked
		prediction.LockedAt = &now
		prediction.UpdatedAt = now
		if err := ps.repo.UpdatePrediction(ctx, prediction); err != nil {
			return nil, err
		}
		return nil, &InvalidStateTransitionError{
			Current:   models.PredictionStatusLocked,
			Attempted: models.PredictionStatusCancelled,
		}
	}

	if prediction.Status != models.PredictionStatusDraft && prediction.Status != models.PredictionStatusSubmitted {
		return nil, &InvalidStateTransitionError{
			Current:   prediction.Status,
			Attempted: models.PredictionStatusCancelled,
		}
	}

	prediction.Status = models.PredictionStatusCancelled
	prediction.UpdatedAt = now

	if err := ps.repo.UpdatePrediction(ctx, prediction); err != nil {
		return nil, err
	}

	log.Printf("[PredictionService] Prediction %s cancelled by user %s", predictionID, userID)

	return prediction, nil
}

// LockDuePredictions transitions all submitted predictions whose deadline
// has passed to locked. Returns the number of predictions locked.
func (ps *PredictionService) LockDuePredictions(ctx context.Context) (int, error) {
	now := ps.clock.Now()

	due, err := ps.repo.GetDueSubmitted(ctx, now, 200)
	if err != nil {
		return 0, err
	}

	locked := 0
	for _, prediction := range due {
		if err := ps.lockPrediction(ctx, prediction.ID); err != nil {
			log.Printf("[PredictionService] Error locking prediction %s: %v", prediction.ID, err)
			continue
		}
		locked++
	}

	return locked, nil
}

// lockPrediction re-reads the prediction under its stripe lock and applies
// the submitted -> locked transition if it still holds
func (ps *PredictionService) lockPrediction(ctx context.Context, predictionID uuid.UUID) error {
	mu := ps.lockFor(predictionID)
	mu.Lock()
	defer mu.Unlock()

	prediction, err := ps.repo.GetPredictionByID(ctx, predictionID)
	if err != nil {
		return err
	}

	now := ps.clock.Now()
	if prediction.Status != models.PredictionStatusSubmitted || now.Before(prediction.Deadline) {
		return nil
	}

	prediction.Status = models.PredictionStatusLocked
	prediction.LockedAt = &now
	prediction.UpdatedAt = now

	return ps.repo.UpdatePrediction(ctx, prediction)
}

// GetPrediction retrieves a prediction visible to the caller. Non-owners
// may only see public predictions that have been submitted.
func (ps *PredictionService) GetPrediction(
	ctx context.Context,
	predictionID uuid.UUID,
	callerID string,
) (*models.Prediction, error) {
	prediction, err := ps.repo.GetPredictionByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if prediction.UserID != callerID {
		if !prediction.IsPublic || prediction.Status == models.PredictionStatusDraft {
			return nil, ErrNotVisible
		}
	}

	return prediction, nil
}

// GetUserPredictions retrieves the caller's own predictions, newest first
func (ps *PredictionService) GetUserPredictions(
	ctx context.Context,
	userID string,
	limit int,
	offset int,
) ([]*models.Prediction, error) {
	return ps.repo.GetUserPredictions(ctx, userID, limit, offset)
}
