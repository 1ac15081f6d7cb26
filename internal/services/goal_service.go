package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"

	"github.com/google/uuid"
)

var ErrGoalExists = errors.New("saving goal already exists")

// GoalStore is the repository surface the goal service uses.
type GoalStore interface {
	CreateSavingGoal(ctx context.Context, g core.SavingGoal) error
	GetSavingGoalByUserID(ctx context.Context, userID string) (core.SavingGoal, error)
	UpdateSavingGoal(ctx context.Context, id string, targetAmount float64) (core.SavingGoal, error)
	CreateSavingCategoryGoal(ctx context.Context, g core.SavingCategoryGoal) error
	ListSavingCategoryGoals(ctx context.Context, userID string) ([]core.SavingCategoryGoal, error)
	UpdateSavingCategoryGoal(ctx context.Context, id string, category core.Category, targetAmount float64) (core.SavingCategoryGoal, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter, p storage.Page) ([]core.Transaction, int, error)
}

// GoalService manages saving goals and derives their progress from the
// user's withdrawal history.
type GoalService struct {
	store  GoalStore
	logger *applog.Logger
}

func NewGoalService(store GoalStore, logger *applog.Logger) *GoalService {
	return &GoalService{
		store:  store,
		logger: logger.WithComponent(applog.ComponentAnalytics),
	}
}

// CreateSavingGoal registers the user's overall monthly target. A user has
// at most one.
func (s *GoalService) CreateSavingGoal(ctx context.Context, userID string, targetAmount float64) (analytics.GoalProgress, error) {
	now := time.Now().UTC()
	goal := core.SavingGoal{
		ID:           uuid.NewString(),
		UserID:       userID,
		TargetAmount: targetAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := goal.Validate(); err != nil {
		return analytics.GoalProgress{}, err
	}

	if _, err := s.store.GetSavingGoalByUserID(ctx, userID); err == nil {
		return analytics.GoalProgress{}, ErrGoalExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return analytics.GoalProgress{}, fmt.Errorf("check existing goal: %w", err)
	}

	if err := s.store.CreateSavingGoal(ctx, goal); err != nil {
		return analytics.GoalProgress{}, fmt.Errorf("create saving goal: %w", err)
	}

	s.logger.InfoContext(ctx, "saving goal created",
		applog.FieldGoalID, goal.ID,
		applog.FieldUserID, userID,
		applog.FieldAmount, targetAmount)
	return s.enrichGoal(ctx, goal)
}

// GetSavingGoal returns the user's goal with derived progress fields.
func (s *GoalService) GetSavingGoal(ctx context.Context, userID string) (analytics.GoalProgress, error) {
	goal, err := s.store.GetSavingGoalByUserID(ctx, userID)
	if err != nil {
		return analytics.GoalProgress{}, err
	}
	return s.enrichGoal(ctx, goal)
}

// UpdateSavingGoal changes the target amount of an existing goal.
func (s *GoalService) UpdateSavingGoal(ctx context.Context, id string, targetAmount float64) (analytics.GoalProgress, error) {
	if targetAmount < 0 {
		return analytics.GoalProgress{}, core.ErrInvalidAmount
	}
	goal, err := s.store.UpdateSavingGoal(ctx, id, targetAmount)
	if err != nil {
		return analytics.GoalProgress{}, err
	}
	return s.enrichGoal(ctx, goal)
}

// CreateCategoryGoal registers a per-category target. One per (user,
// category) pair.
func (s *GoalService) CreateCategoryGoal(ctx context.Context, userID string, category core.Category, targetAmount float64) (analytics.CategoryGoalProgress, error) {
	now := time.Now().UTC()
	goal := core.SavingCategoryGoal{
		ID:           uuid.NewString(),
		UserID:       userID,
		Category:     category,
		TargetAmount: targetAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := goal.Validate(); err != nil {
		return analytics.CategoryGoalProgress{}, err
	}

	existing, err := s.store.ListSavingCategoryGoals(ctx, userID)
	if err != nil {
		return analytics.CategoryGoalProgress{}, fmt.Errorf("check existing goals: %w", err)
	}
	for _, g := range existing {
		if g.Category == category {
			return analytics.CategoryGoalProgress{}, ErrGoalExists
		}
	}

	if err := s.store.CreateSavingCategoryGoal(ctx, goal); err != nil {
		return analytics.CategoryGoalProgress{}, fmt.Errorf("create category goal: %w", err)
	}

	s.logger.InfoContext(ctx, "category goal created",
		applog.FieldGoalID, goal.ID,
		applog.FieldUserID, userID,
		applog.FieldCategory, string(category))
	return s.enrichCategoryGoal(ctx, goal)
}

// ListCategoryGoals returns all category goals for a user with progress.
// An empty result is reported as core.ErrNotFound.
func (s *GoalService) ListCategoryGoals(ctx context.Context, userID string) ([]analytics.CategoryGoalProgress, error) {
	goals, err := s.store.ListSavingCategoryGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list category goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, core.ErrNotFound
	}

	txs, err := s.userTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]analytics.CategoryGoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, analytics.EnrichCategoryGoal(g, txs))
	}
	return out, nil
}

// UpdateCategoryGoal changes the category and/or target of an existing goal.
func (s *GoalService) UpdateCategoryGoal(ctx context.Context, id string, category core.Category, targetAmount float64) (analytics.CategoryGoalProgress, error) {
	if err := category.Validate(); err != nil {
		return analytics.CategoryGoalProgress{}, err
	}
	if targetAmount < 0 {
		return analytics.CategoryGoalProgress{}, core.ErrInvalidAmount
	}
	goal, err := s.store.UpdateSavingCategoryGoal(ctx, id, category, targetAmount)
	if err != nil {
		return analytics.CategoryGoalProgress{}, err
	}
	return s.enrichCategoryGoal(ctx, goal)
}

func (s *GoalService) enrichGoal(ctx context.Context, goal core.SavingGoal) (analytics.GoalProgress, error) {
	txs, err := s.userTransactions(ctx, goal.UserID)
	if err != nil {
		return analytics.GoalProgress{}, err
	}
	return analytics.EnrichGoal(goal, txs), nil
}

func (s *GoalService) enrichCategoryGoal(ctx context.Context, goal core.SavingCategoryGoal) (analytics.CategoryGoalProgress, error) {
	txs, err := s.userTransactions(ctx, goal.UserID)
	if err != nil {
		return analytics.CategoryGoalProgress{}, err
	}
	return analytics.EnrichCategoryGoal(goal, txs), nil
}

func (s *GoalService) userTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, _, err := s.store.ListTransactions(ctx, storage.TransactionFilter{UserID: userID}, storage.Page{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}
