// Package worker evaluates budget alerts: it reacts to transaction events
// from the broker and periodically rescans every stored goal.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"

	"golang.org/x/sync/errgroup"
)

// AlertStore is the repository surface the alert worker reads from.
type AlertStore interface {
	GetSavingGoalByUserID(ctx context.Context, userID string) (core.SavingGoal, error)
	ListSavingGoals(ctx context.Context) ([]core.SavingGoal, error)
	ListSavingCategoryGoals(ctx context.Context, userID string) ([]core.SavingCategoryGoal, error)
	ListAllSavingCategoryGoals(ctx context.Context) ([]core.SavingCategoryGoal, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter, p storage.Page) ([]core.Transaction, int, error)
}

// EventConsumer blocks delivering transaction events until the context ends.
type EventConsumer interface {
	ConsumeTransactionCreated(ctx context.Context, handler func(*amqp.TransactionCreatedMessage) error) error
}

// AlertWorker watches goal budgets. A consumer reacts to single events; a
// ticker rescans everything to catch transactions recorded while the broker
// was unreachable.
type AlertWorker struct {
	store        AlertStore
	consumer     EventConsumer
	scanInterval time.Duration
	logger       *applog.Logger
}

func NewAlertWorker(store AlertStore, consumer EventConsumer, scanInterval time.Duration, logger *applog.Logger) *AlertWorker {
	return &AlertWorker{
		store:        store,
		consumer:     consumer,
		scanInterval: scanInterval,
		logger:       logger.WithComponent(applog.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled, driving the consumer and the periodic
// scan concurrently.
func (w *AlertWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			err := w.consumer.ConsumeTransactionCreated(ctx, func(msg *amqp.TransactionCreatedMessage) error {
				return w.HandleEvent(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.scanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.ScanAll(ctx); err != nil {
					w.logger.ErrorContext(ctx, "budget scan failed", applog.FieldError, err)
				}
			}
		}
	})

	return g.Wait()
}

// HandleEvent re-evaluates the goals of the user behind a transaction event.
// Deposits never push a budget over, so they are skipped.
func (w *AlertWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	if msg.Type != string(core.Withdrawal) {
		return nil
	}

	txs, err := w.userTransactions(ctx, msg.UserID)
	if err != nil {
		return err
	}

	goal, err := w.store.GetSavingGoalByUserID(ctx, msg.UserID)
	switch {
	case err == nil:
		w.checkGoal(ctx, analytics.EnrichGoal(goal, txs))
	case !errors.Is(err, core.ErrNotFound):
		return fmt.Errorf("load saving goal: %w", err)
	}

	categoryGoals, err := w.store.ListSavingCategoryGoals(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load category goals: %w", err)
	}
	for _, g := range categoryGoals {
		if string(g.Category) != msg.Category {
			continue
		}
		w.checkCategoryGoal(ctx, analytics.EnrichCategoryGoal(g, txs))
	}
	return nil
}

// ScanAll re-evaluates every goal in storage.
func (w *AlertWorker) ScanAll(ctx context.Context) error {
	goals, err := w.store.ListSavingGoals(ctx)
	if err != nil {
		return fmt.Errorf("list saving goals: %w", err)
	}
	categoryGoals, err := w.store.ListAllSavingCategoryGoals(ctx)
	if err != nil {
		return fmt.Errorf("list category goals: %w", err)
	}

	// One transaction load per user, shared by all of that user's goals.
	txsByUser := make(map[string][]core.Transaction)
	load := func(userID string) ([]core.Transaction, error) {
		if txs, ok := txsByUser[userID]; ok {
			return txs, nil
		}
		txs, err := w.userTransactions(ctx, userID)
		if err != nil {
			return nil, err
		}
		txsByUser[userID] = txs
		return txs, nil
	}

	for _, goal := range goals {
		txs, err := load(goal.UserID)
		if err != nil {
			return err
		}
		w.checkGoal(ctx, analytics.EnrichGoal(goal, txs))
	}
	for _, goal := range categoryGoals {
		txs, err := load(goal.UserID)
		if err != nil {
			return err
		}
		w.checkCategoryGoal(ctx, analytics.EnrichCategoryGoal(goal, txs))
	}
	return nil
}

func (w *AlertWorker) checkGoal(ctx context.Context, p analytics.GoalProgress) {
	if p.RemainingAmount >= 0 {
		return
	}
	w.logger.WarnContext(ctx, "saving goal over budget",
		applog.FieldGoalID, p.Goal.ID,
		applog.FieldUserID, p.Goal.UserID,
		applog.FieldAmount, p.Goal.TargetAmount,
		applog.FieldRemaining, p.RemainingAmount)
}

func (w *AlertWorker) checkCategoryGoal(ctx context.Context, p analytics.CategoryGoalProgress) {
	if p.RemainingAmount >= 0 {
		return
	}
	w.logger.WarnContext(ctx, "category goal over budget",
		applog.FieldGoalID, p.Goal.ID,
		applog.FieldUserID, p.Goal.UserID,
		applog.FieldCategory, string(p.Goal.Category),
		applog.FieldAmount, p.Goal.TargetAmount,
		applog.FieldRemaining, p.RemainingAmount)
}

func (w *AlertWorker) userTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	txs, _, err := w.store.ListTransactions(ctx, storage.TransactionFilter{UserID: userID}, storage.Page{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}
