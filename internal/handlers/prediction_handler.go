package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ring-predictions/internal/auth"
	"ring-predictions/internal/models"
	"ring-predictions/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PredictionHandler struct {
	predictionService *services.PredictionService
}

func NewPredictionHandler(predictionService *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// respondError maps engine errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var transitionErr *services.InvalidStateTransitionError
	var outcomeErr *services.IncompleteOutcomeError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDeadlinePassed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &outcomeErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, services.ErrNotVisible):
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// CreatePrediction creates a new draft prediction
// POST /api/predictions
func (h *PredictionHandler) CreatePrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreatePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictionService.CreatePrediction(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewPredictionResponse(prediction))
}

// GetPrediction retrieves a prediction by ID
// GET /api/predictions/:id
func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	prediction, err := h.predictionService.GetPrediction(c.Request.Context(), predictionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPredictionResponse(prediction))
}

// GetUserPredictions retrieves the current user's predictions
// GET /api/predictions
func (h *PredictionHandler) GetUserPredictions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// Parse pagination parameters
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	predictions, err := h.predictionService.GetUserPredictions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get predictions"})
		return
	}

	responses := make([]models.PredictionResponse, 0, len(predictions))
	for _, prediction := range predictions {
		responses = append(responses, models.NewPredictionResponse(prediction))
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": responses,
		"total":       len(responses),
	})
}

// SubmitPrediction transitions a draft prediction to submitted
// POST /api/predictions/:id/submit
func (h *PredictionHandler) SubmitPrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	prediction, err := h.predictionService.SubmitPrediction(c.Request.Context(), predictionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPredictionResponse(prediction))
}

// CancelPrediction cancels a draft or submitted prediction
// POST /api/predictions/:id/cancel
func (h *PredictionHandler) CancelPrediction(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	prediction, err := h.predictionService.CancelPrediction(c.Request.Context(), predictionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPredictionResponse(prediction))
}

// ResolvePrediction resolves a locked prediction against the actual outcome
// POST /api/predictions/:id/resolve
func (h *PredictionHandler) ResolvePrediction(c *gin.Context) {
	predictionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	var req models.ResolvePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictionService.ResolvePrediction(c.Request.Context(), predictionID, req.ActualOutcome)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPredictionResponse(prediction))
}
