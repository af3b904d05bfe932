package models

import (
	"time"

	"github.com/google/uuid"
)

type PredictionStatus string

const (
	PredictionStatusDraft     PredictionStatus = "DRAFT"
	PredictionStatusSubmitted PredictionStatus = "SUBMITTED"
	PredictionStatusLocked    PredictionStatus = "LOCKED"
	PredictionStatusResolved  PredictionStatus = "RESOLVED"
	PredictionStatusCancelled PredictionStatus = "CANCELLED"
)

type PredictionType string

const (
	PredictionTypePPVMatch      PredictionType = "PPV_MATCH"
	PredictionTypeMonthlyAward  PredictionType = "MONTHLY_AWARD"
	PredictionTypeStoryline     PredictionType = "STORYLINE"
	PredictionTypeHotTake       PredictionType = "HOT_TAKE"
	PredictionTypeSafePick      PredictionType = "SAFE_PICK"
	PredictionTypeCustomContest PredictionType = "CUSTOM_CONTEST"
)

// Valid reports whether t is one of the known prediction types
func (t PredictionType) Valid() bool {
	switch t {
	case PredictionTypePPVMatch, PredictionTypeMonthlyAward, PredictionTypeStoryline,
		PredictionTypeHotTake, PredictionTypeSafePick, PredictionTypeCustomContest:
		return true
	}
	return false
}

// DisplayLabel returns the user-facing name for the prediction type
func (t PredictionType) DisplayLabel() string {
	switch t {
	case PredictionTypePPVMatch:
		return "PPV Match"
	case PredictionTypeMonthlyAward:
		return "Monthly Award"
	case PredictionTypeStoryline:
		return "Storyline"
	case PredictionTypeHotTake:
		return "Hot Take"
	case PredictionTypeSafePick:
		return "Safe Pick"
	case PredictionTypeCustomContest:
		return "Custom Contest"
	}
	return string(t)
}

// Icon returns the icon name shown next to the prediction type
func (t PredictionType) Icon() string {
	switch t {
	case PredictionTypePPVMatch:
		return "trophy"
	case PredictionTypeMonthlyAward:
		return "calendar"
	case PredictionTypeStoryline:
		return "book"
	case PredictionTypeHotTake:
		return "flame"
	case PredictionTypeSafePick:
		return "shield"
	case PredictionTypeCustomContest:
		return "star"
	}
	return "circle"
}

// Color returns the accent color associated with the prediction type
func (t PredictionType) Color() string {
	switch t {
	case PredictionTypePPVMatch:
		return "#FFD700"
	case PredictionTypeMonthlyAward:
		return "#9B59B6"
	case PredictionTypeStoryline:
		return "#3498DB"
	case PredictionTypeHotTake:
		return "#E74C3C"
	case PredictionTypeSafePick:
		return "#2ECC71"
	case PredictionTypeCustomContest:
		return "#F39C12"
	}
	return "#95A5A6"
}

// Pick represents a single wrestler/outcome choice inside a prediction
type Pick struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PredictionID uuid.UUID `gorm:"type:uuid;not null;index" json:"prediction_id"`
	WrestlerName string    `gorm:"size:255;not null" json:"wrestler_name"`
	ImageURL     *string   `gorm:"size:500" json:"image_url"`
	Position     int       `gorm:"not null" json:"position"`
	IsWinner     *bool     `json:"is_winner"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Pick) TableName() string {
	return "picks"
}

// Prediction represents a user's forecast about a wrestling event
type Prediction struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string           `gorm:"size:255;not null" json:"title"`
	Description     string           `gorm:"size:2000" json:"description"`
	UserID          string           `gorm:"size:255;not null;index" json:"user_id"`
	PredictionType  PredictionType   `gorm:"size:50;not null" json:"prediction_type"`
	Picks           []Pick           `gorm:"foreignKey:PredictionID;references:ID" json:"picks"`
	ConfidenceLevel int              `gorm:"not null" json:"confidence_level"`
	Deadline        time.Time        `gorm:"not null;index" json:"deadline"`
	IsPublic        bool             `gorm:"not null;default:false" json:"is_public"`
	EventID         *string          `gorm:"size:255;index" json:"event_id"`
	Status          PredictionStatus `gorm:"size:50;not null;default:DRAFT;index" json:"status"`
	AccuracyScore   *float64         `gorm:"type:decimal(5,4)" json:"accuracy_score"`
	IsCorrect       *bool            `json:"is_correct"`
	PointsEarned    *int64           `json:"points_earned"`
	CreatedAt       time.Time        `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	SubmittedAt     *time.Time       `json:"submitted_at"`
	LockedAt        *time.Time       `json:"locked_at"`
	ResolvedAt      *time.Time       `json:"resolved_at"`
	UpdatedAt       time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// AccuracyResult is the outcome of resolving a prediction against real results
type AccuracyResult struct {
	IsCorrect     bool    `json:"is_correct"`
	AccuracyScore float64 `json:"accuracy_score"`
	PointsEarned  int64   `json:"points_earned"`
}

// Accuracy returns the resolution result, or nil while the prediction is unresolved
func (p *Prediction) Accuracy() *AccuracyResult {
	if p.Status != PredictionStatusResolved || p.AccuracyScore == nil || p.IsCorrect == nil || p.PointsEarned == nil {
		return nil
	}
	return &AccuracyResult{
		IsCorrect:     *p.IsCorrect,
		AccuracyScore: *p.AccuracyScore,
		PointsEarned:  *p.PointsEarned,
	}
}

// PickInput is a single pick inside a create request
type PickInput struct {
	WrestlerName string  `json:"wrestler_name" binding:"required"`
	ImageURL     *string `json:"image_url"`
	Position     int     `json:"position" binding:"min=0"`
}

// CreatePredictionRequest represents a request to create a new prediction
type CreatePredictionRequest struct {
	Title           string         `json:"title" binding:"required"`
	Description     string         `json:"description"`
	PredictionType  PredictionType `json:"prediction_type" binding:"required"`
	Picks           []PickInput    `json:"picks" binding:"required"`
	ConfidenceLevel int            `json:"confidence_level" binding:"required"`
	Deadline        time.Time      `json:"deadline" binding:"required"`
	IsPublic        bool           `json:"is_public"`
	EventID         *string        `json:"event_id"`
}

// ResolvePredictionRequest carries the actual event outcome, keyed by pick position
type ResolvePredictionRequest struct {
	ActualOutcome map[int]string `json:"actual_outcome" binding:"required"`
}

// PredictionResponse represents a prediction in API responses
type PredictionResponse struct {
	Prediction
	TypeLabel string          `json:"type_label"`
	TypeIcon  string          `json:"type_icon"`
	TypeColor string          `json:"type_color"`
	Result    *AccuracyResult `json:"result"`
}

// NewPredictionResponse builds the API representation of a prediction
func NewPredictionResponse(p *Prediction) PredictionResponse {
	return PredictionResponse{
		Prediction: *p,
		TypeLabel:  p.PredictionType.DisplayLabel(),
		TypeIcon:   p.PredictionType.Icon(),
		TypeColor:  p.PredictionType.Color(),
		Result:     p.Accuracy(),
	}
}
