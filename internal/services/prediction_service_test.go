package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ring-predictions/internal/models"
	"ring-predictions/internal/repository"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Prediction{},
		&models.Pick{},
		&models.UserBadge{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func cleanTables(db *gorm.DB) {
	db.Exec("DELETE FROM picks")
	db.Exec("DELETE FROM predictions")
	db.Exec("DELETE FROM user_badges")
}

func newTestService(t *testing.T) (*PredictionService, *repository.Repository, *clockwork.FakeClock) {
	db := setupTestDB(t)
	cleanTables(db)

	repo := repository.NewRepository(db)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	service := NewPredictionService(repo, clock, DefaultBasePointsPerConfidenceUnit, 0.5)

	return service, repo, clock
}

func singlePickRequest(deadline time.Time, confidence int) *models.CreatePredictionRequest {
	return &models.CreatePredictionRequest{
		Title:          "WrestleMania Main Event",
		Description:    "Who takes the title",
		PredictionType: models.PredictionTypePPVMatch,
		Picks: []models.PickInput{
			{WrestlerName: "Roman Reigns", Position: 0},
		},
		ConfidenceLevel: confidence,
		Deadline:        deadline,
		IsPublic:        true,
	}
}

func TestCreatePredictionValidation(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()
	future := clock.Now().Add(24 * time.Hour)

	cases := []struct {
		name string
		req  *models.CreatePredictionRequest
	}{
		{
			name: "empty title",
			req: &models.CreatePredictionRequest{
				Title:           "   ",
				PredictionType:  models.PredictionTypePPVMatch,
				Picks:           []models.PickInput{{WrestlerName: "Rhea Ripley", Position: 0}},
				ConfidenceLevel: 5,
				Deadline:        future,
			},
		},
		{
			name: "no picks",
			req: &models.CreatePredictionRequest{
				Title:           "Royal Rumble winner",
				PredictionType:  models.PredictionTypePPVMatch,
				ConfidenceLevel: 5,
				Deadline:        future,
			},
		},
		{
			name: "duplicate positions",
			req: &models.CreatePredictionRequest{
				Title:          "Tag team picks",
				PredictionType: models.PredictionTypePPVMatch,
				Picks: []models.PickInput{
					{WrestlerName: "Rhea Ripley", Position: 0},
					{WrestlerName: "Bianca Belair", Position: 0},
				},
				ConfidenceLevel: 5,
				Deadline:        future,
			},
		},
		{
			name: "non-contiguous positions",
			req: &models.CreatePredictionRequest{
				Title:          "Tag team picks",
				PredictionType: models.PredictionTypePPVMatch,
				Picks: []models.PickInput{
					{WrestlerName: "Rhea Ripley", Position: 0},
					{WrestlerName: "Bianca Belair", Position: 2},
				},
				ConfidenceLevel: 5,
				Deadline:        future,
			},
		},
		{
			name: "confidence too low",
			req: &models.CreatePredictionRequest{
				Title:           "Royal Rumble winner",
				PredictionType:  models.PredictionTypePPVMatch,
				Picks:           []models.PickInput{{WrestlerName: "Cody Rhodes", Position: 0}},
				ConfidenceLevel: 0,
				Deadline:        future,
			},
		},
		{
			name: "confidence too high",
			req: &models.CreatePredictionRequest{
				Title:           "Royal Rumble winner",
				PredictionType:  models.PredictionTypePPVMatch,
				Picks:           []models.PickInput{{WrestlerName: "Cody Rhodes", Position: 0}},
				ConfidenceLevel: 11,
				Deadline:        future,
			},
		},
		{
			name: "past deadline",
			req: &models.CreatePredictionRequest{
				Title:           "Royal Rumble winner",
				PredictionType:  models.PredictionTypePPVMatch,
				Picks:           []models.PickInput{{WrestlerName: "Cody Rhodes", Position: 0}},
				ConfidenceLevel: 5,
				Deadline:        clock.Now().Add(-time.Hour),
			},
		},
		{
			name: "unknown type",
			req: &models.CreatePredictionRequest{
				Title:           "Royal Rumble winner",
				PredictionType:  "LOTTERY",
				Picks:           []models.PickInput{{WrestlerName: "Cody Rhodes", Position: 0}},
				ConfidenceLevel: 5,
				Deadline:        future,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreatePrediction(ctx, "user-1", tc.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreatePrediction(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(24*time.Hour), 8))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	if prediction.Status != models.PredictionStatusDraft {
		t.Errorf("expected status DRAFT, got %s", prediction.Status)
	}
	if len(prediction.Picks) != 1 {
		t.Errorf("expected 1 pick, got %d", len(prediction.Picks))
	}
	if prediction.Accuracy() != nil {
		t.Error("expected no accuracy result before resolution")
	}
}

func TestSubmitAfterDeadlineFails(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	clock.Advance(2 * time.Hour)

	_, err = service.SubmitPrediction(ctx, prediction.ID, "user-1")
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Errorf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestPredictionLifecycleEndToEnd(t *testing.T) {
	service, repo, clock := newTestService(t)
	ctx := context.Background()

	// Create a single-pick prediction with confidence 8
	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 8))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	// Submit while the deadline is still in the future
	prediction, err = service.SubmitPrediction(ctx, prediction.ID, "user-1")
	if err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	if prediction.Status != models.PredictionStatusSubmitted {
		t.Fatalf("expected status SUBMITTED, got %s", prediction.Status)
	}

	// Advance past the deadline and run the sweep
	clock.Advance(2 * time.Hour)
	locked, err := service.LockDuePredictions(ctx)
	if err != nil {
		t.Fatalf("LockDuePredictions failed: %v", err)
	}
	if locked != 1 {
		t.Fatalf("expected 1 locked prediction, got %d", locked)
	}

	stored, err := repo.GetPredictionByID(ctx, prediction.ID)
	if err != nil {
		t.Fatalf("GetPredictionByID failed: %v", err)
	}
	if stored.Status != models.PredictionStatusLocked {
		t.Fatalf("expected status LOCKED, got %s", stored.Status)
	}

	// Resolve with the matching outcome
	resolved, err := service.ResolvePrediction(ctx, prediction.ID, map[int]string{0: "Roman Reigns"})
	if err != nil {
		t.Fatalf("ResolvePrediction failed: %v", err)
	}

	result := resolved.Accuracy()
	if result == nil {
		t.Fatal("expected accuracy result after resolution")
	}
	if !result.IsCorrect {
		t.Error("expected prediction to be correct")
	}
	if result.AccuracyScore != 1.0 {
		t.Errorf("expected accuracy score 1.0, got %f", result.AccuracyScore)
	}
	if result.PointsEarned != 80 {
		t.Errorf("expected 80 points, got %d", result.PointsEarned)
	}

	// Stats derived from the single resolved prediction
	resolvedSet, err := repo.GetResolvedPredictionsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetResolvedPredictionsByUser failed: %v", err)
	}
	stats := ComputeStats("user-1", resolvedSet)

	if stats.TotalPredictions != 1 {
		t.Errorf("expected 1 total prediction, got %d", stats.TotalPredictions)
	}
	if stats.Accuracy != 1.0 {
		t.Errorf("expected accuracy 1.0, got %f", stats.Accuracy)
	}
	if stats.CurrentStreak != 1 {
		t.Errorf("expected current streak 1, got %d", stats.CurrentStreak)
	}
	if stats.TotalPoints != 80 {
		t.Errorf("expected 80 total points, got %d", stats.TotalPoints)
	}
}

func TestResolveIdempotent(t *testing.T) {
	service, repo, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 7))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := service.LockDuePredictions(ctx); err != nil {
		t.Fatalf("LockDuePredictions failed: %v", err)
	}

	first, err := service.ResolvePrediction(ctx, prediction.ID, map[int]string{0: "Roman Reigns"})
	if err != nil {
		t.Fatalf("first ResolvePrediction failed: %v", err)
	}

	// A second resolve, even with a different outcome, fails and mutates nothing
	_, err = service.ResolvePrediction(ctx, prediction.ID, map[int]string{0: "Seth Rollins"})
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}

	stored, err := repo.GetPredictionByID(ctx, prediction.ID)
	if err != nil {
		t.Fatalf("GetPredictionByID failed: %v", err)
	}
	if stored.Accuracy() == nil || first.Accuracy() == nil {
		t.Fatal("expected accuracy results on both")
	}
	if *stored.AccuracyScore != *first.AccuracyScore || *stored.PointsEarned != *first.PointsEarned {
		t.Error("second resolve call changed the stored accuracy result")
	}
}

func TestResolveMultiPickBelowThreshold(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	req := &models.CreatePredictionRequest{
		Title:          "Survivor Series card",
		PredictionType: models.PredictionTypePPVMatch,
		Picks: []models.PickInput{
			{WrestlerName: "Roman Reigns", Position: 0},
			{WrestlerName: "Seth Rollins", Position: 1},
			{WrestlerName: "Becky Lynch", Position: 2},
			{WrestlerName: "Finn Balor", Position: 3},
		},
		ConfidenceLevel: 6,
		Deadline:        clock.Now().Add(time.Hour),
	}

	prediction, err := service.CreatePrediction(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := service.LockDuePredictions(ctx); err != nil {
		t.Fatalf("LockDuePredictions failed: %v", err)
	}

	// Only position 0 matches
	resolved, err := service.ResolvePrediction(ctx, prediction.ID, map[int]string{
		0: "Roman Reigns",
		1: "CM Punk",
		2: "Rhea Ripley",
		3: "Damian Priest",
	})
	if err != nil {
		t.Fatalf("ResolvePrediction failed: %v", err)
	}

	result := resolved.Accuracy()
	if result == nil {
		t.Fatal("expected accuracy result")
	}
	if result.AccuracyScore != 0.25 {
		t.Errorf("expected accuracy score 0.25, got %f", result.AccuracyScore)
	}
	if result.IsCorrect {
		t.Error("expected prediction to be incorrect below the majority threshold")
	}
	if result.PointsEarned != 0 {
		t.Errorf("expected 0 points for an incorrect prediction, got %d", result.PointsEarned)
	}
}

func TestResolveMultiPickMajority(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	req := &models.CreatePredictionRequest{
		Title:          "Survivor Series card",
		PredictionType: models.PredictionTypePPVMatch,
		Picks: []models.PickInput{
			{WrestlerName: "Roman Reigns", Position: 0},
			{WrestlerName: "Seth Rollins", Position: 1},
			{WrestlerName: "Becky Lynch", Position: 2},
			{WrestlerName: "Finn Balor", Position: 3},
		},
		ConfidenceLevel: 4,
		Deadline:        clock.Now().Add(time.Hour),
	}

	prediction, err := service.CreatePrediction(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := service.LockDuePredictions(ctx); err != nil {
		t.Fatalf("LockDuePredictions failed: %v", err)
	}

	// Three of four match
	resolved, err := service.ResolvePrediction(ctx, prediction.ID, map[int]string{
		0: "Roman Reigns",
		1: "Seth Rollins",
		2: "Becky Lynch",
		3: "Damian Priest",
	})
	if err != nil {
		t.Fatalf("ResolvePrediction failed: %v", err)
	}

	result := resolved.Accuracy()
	if result == nil {
		t.Fatal("expected accuracy result")
	}
	if result.AccuracyScore != 0.75 {
		t.Errorf("expected accuracy score 0.75, got %f", result.AccuracyScore)
	}
	if !result.IsCorrect {
		t.Error("expected prediction to be correct at 0.75 accuracy")
	}
	// round(0.75 * 4 * 10) = 30
	if result.PointsEarned != 30 {
		t.Errorf("expected 30 points, got %d", result.PointsEarned)
	}
}

func TestResolveIncompleteOutcome(t *testing.T) {
	service, repo, clock := newTestService(t)
	ctx := context.Background()

	req := &models.CreatePredictionRequest{
		Title:          "Tag match picks",
		PredictionType: models.PredictionTypePPVMatch,
		Picks: []models.PickInput{
			{WrestlerName: "Roman Reigns", Position: 0},
			{WrestlerName: "Seth Rollins", Position: 1},
		},
		ConfidenceLevel: 5,
		Deadline:        clock.Now().Add(time.Hour),
	}

	prediction, err := service.CreatePrediction(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := service.LockDuePredictions(ctx); err != nil {
		t.Fatalf("LockDuePredictions failed: %v", err)
	}

	_, err = service.ResolvePrediction(ctx, prediction.ID, map[int]string{0: "Roman Reigns"})

	var outcomeErr *IncompleteOutcomeError
	if !errors.As(err, &outcomeErr) {
		t.Fatalf("expected IncompleteOutcomeError, got %v", err)
	}
	if len(outcomeErr.MissingPositions) != 1 || outcomeErr.MissingPositions[0] != 1 {
		t.Errorf("expected missing position [1], got %v", outcomeErr.MissingPositions)
	}

	// Nothing was mutated
	stored, err := repo.GetPredictionByID(ctx, prediction.ID)
	if err != nil {
		t.Fatalf("GetPredictionByID failed: %v", err)
	}
	if stored.Status != models.PredictionStatusLocked {
		t.Errorf("expected status LOCKED after failed resolve, got %s", stored.Status)
	}
}

func TestResolveCaseSensitiveNameMatch(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := service.LockDuePredictions(ctx); err != nil {
		t.Fatalf("LockDuePredictions failed: %v", err)
	}

	resolved, err := service.ResolvePrediction(ctx, prediction.ID, map[int]string{0: "roman reigns"})
	if err != nil {
		t.Fatalf("ResolvePrediction failed: %v", err)
	}

	result := resolved.Accuracy()
	if result == nil {
		t.Fatal("expected accuracy result")
	}
	if result.IsCorrect {
		t.Error("name match is case-sensitive; lowercased outcome should not count")
	}
}

func TestResolveRequiresLocked(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}

	// Still submitted, the deadline has not passed
	_, err = service.ResolvePrediction(ctx, prediction.ID, map[int]string{0: "Roman Reigns"})

	var transitionErr *InvalidStateTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidStateTransitionError, got %v", err)
	}
	if transitionErr.Current != models.PredictionStatusSubmitted {
		t.Errorf("expected current state SUBMITTED in error, got %s", transitionErr.Current)
	}
}

func TestCancelFromDraftAndSubmitted(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	// Cancel from draft
	draft, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	cancelled, err := service.CancelPrediction(ctx, draft.ID, "user-1")
	if err != nil {
		t.Fatalf("CancelPrediction from draft failed: %v", err)
	}
	if cancelled.Status != models.PredictionStatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
	}

	// Cancel from submitted
	submitted, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, submitted.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}
	cancelled, err = service.CancelPrediction(ctx, submitted.ID, "user-1")
	if err != nil {
		t.Fatalf("CancelPrediction from submitted failed: %v", err)
	}
	if cancelled.Status != models.PredictionStatusCancelled {
		t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
	}
}

func TestCancelAfterDeadlineLocksFirst(t *testing.T) {
	service, repo, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}

	// Deadline passes before the sweep runs; the cancel races and loses
	clock.Advance(2 * time.Hour)

	_, err = service.CancelPrediction(ctx, prediction.ID, "user-1")

	var transitionErr *InvalidStateTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidStateTransitionError, got %v", err)
	}
	if transitionErr.Current != models.PredictionStatusLocked {
		t.Errorf("expected current state LOCKED in error, got %s", transitionErr.Current)
	}

	stored, err := repo.GetPredictionByID(ctx, prediction.ID)
	if err != nil {
		t.Fatalf("GetPredictionByID failed: %v", err)
	}
	if stored.Status != models.PredictionStatusLocked {
		t.Errorf("expected stored status LOCKED, got %s", stored.Status)
	}
}

func TestCancelByNonOwnerFails(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	prediction, err := service.CreatePrediction(ctx, "user-1", singlePickRequest(clock.Now().Add(time.Hour), 5))
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	_, err = service.CancelPrediction(ctx, prediction.ID, "user-2")
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestGetPredictionVisibility(t *testing.T) {
	service, _, clock := newTestService(t)
	ctx := context.Background()

	// Public prediction: hidden from others while draft, visible once submitted
	req := singlePickRequest(clock.Now().Add(time.Hour), 5)
	prediction, err := service.CreatePrediction(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	if _, err := service.GetPrediction(ctx, prediction.ID, "user-2"); !errors.Is(err, ErrNotVisible) {
		t.Errorf("expected ErrNotVisible for draft, got %v", err)
	}

	if _, err := service.SubmitPrediction(ctx, prediction.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}

	if _, err := service.GetPrediction(ctx, prediction.ID, "user-2"); err != nil {
		t.Errorf("expected public submitted prediction to be visible, got %v", err)
	}

	// Private prediction stays hidden from others
	privReq := singlePickRequest(clock.Now().Add(time.Hour), 5)
	privReq.IsPublic = false
	private, err := service.CreatePrediction(ctx, "user-1", privReq)
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}
	if _, err := service.SubmitPrediction(ctx, private.ID, "user-1"); err != nil {
		t.Fatalf("SubmitPrediction failed: %v", err)
	}

	if _, err := service.GetPrediction(ctx, private.ID, "user-2"); !errors.Is(err, ErrNotVisible) {
		t.Errorf("expected ErrNotVisible for private prediction, got %v", err)
	}
	if _, err := service.GetPrediction(ctx, private.ID, "user-1"); err != nil {
		t.Errorf("expected owner to see private prediction, got %v", err)
	}
}
