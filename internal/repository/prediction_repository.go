package repository

import (
	"context"
	"time"

	"ring-predictions/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePrediction creates a new prediction with its picks
func (r *Repository) CreatePrediction(ctx context.Context, prediction *models.Prediction) error {
	return r.db.WithContext(ctx).Create(prediction).Error
}

// GetPredictionByID retrieves a prediction by ID with its picks in position order
func (r *Repository) GetPredictionByID(ctx context.Context, predictionID uuid.UUID) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).
		Preload("Picks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", predictionID).
		First(&prediction).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// UpdatePrediction updates a prediction
func (r *Repository) UpdatePrediction(ctx context.Context, prediction *models.Prediction) error {
	return r.db.WithContext(ctx).Omit("Picks").Save(prediction).Error
}

// SaveResolution persists a resolved prediction and its picks atomically
func (r *Repository) SaveResolution(ctx context.Context, prediction *models.Prediction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range prediction.Picks {
			if err := tx.Model(&models.Pick{}).
				Where("id = ?", prediction.Picks[i].ID).
				Update("is_winner", prediction.Picks[i].IsWinner).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Picks").Save(prediction).Error
	})
}

// GetUserPredictions retrieves a user's predictions, newest first
func (r *Repository) GetUserPredictions(
	ctx context.Context,
	userID string,
	limit int,
	offset int,
) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Preload("Picks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetResolvedPredictionsByUser retrieves a user's resolved predictions,
// newest first by creation time
func (r *Repository) GetResolvedPredictionsByUser(ctx context.Context, userID string) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.PredictionStatusResolved).
		Order("created_at DESC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetDueSubmitted retrieves submitted predictions whose deadline has passed
func (r *Repository) GetDueSubmitted(ctx context.Context, now time.Time, limit int) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("status = ? AND deadline <= ?", models.PredictionStatusSubmitted, now).
		Order("deadline ASC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetResolvedUserIDs retrieves the ids of all users with at least one
// resolved prediction
func (r *Repository) GetResolvedUserIDs(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("status = ?", models.PredictionStatusResolved).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// UnlockBadge records an unlocked badge; inserting an already unlocked
// badge is a no-op
func (r *Repository) UnlockBadge(ctx context.Context, badge *models.UserBadge) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(badge).Error
}

// GetUserBadges retrieves all badges a user has unlocked
func (r *Repository) GetUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	var badges []*models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&badges).Error
	if err != nil {
		return nil, err
	}
	return badges, nil
}
