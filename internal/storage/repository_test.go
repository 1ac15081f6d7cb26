package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"

	"github.com/google/uuid"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository) core.User {
	t.Helper()
	u := core.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func seedTx(t *testing.T, repo *Repository, userID string, amount float64, typ core.TransactionType, cat core.Category, at time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Type:      typ,
		Category:  cat,
		CreatedAt: at,
	}
	if err := repo.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return tx
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo)

	got, err := repo.GetUserByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != u.PasswordHash {
		t.Fatalf("got %+v, want %+v", got, u)
	}

	if _, err := repo.GetUserByEmail(context.Background(), "nobody@example.com"); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo)
	other := seedUser(t, repo)

	jan5 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	seedTx(t, repo, u.ID, 100, core.Withdrawal, core.CategoryFood, jan5)
	seedTx(t, repo, u.ID, 200, core.Deposit, core.CategoryIncome, jan5.AddDate(0, 0, 1))
	seedTx(t, repo, u.ID, 50, core.Withdrawal, core.CategoryRent, jan5.AddDate(0, 1, 0))
	seedTx(t, repo, other.ID, 999, core.Withdrawal, core.CategoryFood, jan5)

	ctx := context.Background()

	// User scoping.
	txs, total, err := repo.ListTransactions(ctx, TransactionFilter{UserID: u.ID}, Page{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if total != 3 || len(txs) != 3 {
		t.Fatalf("got %d/%d, want 3/3", len(txs), total)
	}
	// Creation order.
	if txs[0].Amount != 100 || txs[2].Amount != 50 {
		t.Fatalf("unexpected order: %+v", txs)
	}

	// Type filter.
	txs, total, _ = repo.ListTransactions(ctx, TransactionFilter{UserID: u.ID, Type: core.Withdrawal}, Page{})
	if total != 2 {
		t.Fatalf("withdrawal total = %d, want 2", total)
	}

	// Category filter.
	txs, _, _ = repo.ListTransactions(ctx, TransactionFilter{UserID: u.ID, Category: core.CategoryRent}, Page{})
	if len(txs) != 1 || txs[0].Amount != 50 {
		t.Fatalf("category filter wrong: %+v", txs)
	}

	// Range filter: January only.
	r, _ := analytics.ResolveRange(analytics.PeriodMonth, jan5)
	txs, total, _ = repo.ListTransactions(ctx, TransactionFilter{UserID: u.ID, Range: &r}, Page{})
	if total != 2 {
		t.Fatalf("range total = %d, want 2", total)
	}

	// Pagination.
	txs, total, _ = repo.ListTransactions(ctx, TransactionFilter{UserID: u.ID}, Page{Page: 2, Limit: 2})
	if total != 3 || len(txs) != 1 {
		t.Fatalf("page 2 got %d/%d, want 1/3", len(txs), total)
	}

	// No user scoping lists everything.
	_, total, _ = repo.ListTransactions(ctx, TransactionFilter{}, Page{})
	if total != 4 {
		t.Fatalf("all-users total = %d, want 4", total)
	}
}

func TestRecentTransactions(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo)

	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedTx(t, repo, u.ID, float64(i+1), core.Withdrawal, core.CategoryFood, base.AddDate(0, 0, i))
	}

	txs, err := repo.RecentTransactions(context.Background(), u.ID, 3)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d, want 3", len(txs))
	}
	// Newest first.
	if txs[0].Amount != 5 || txs[2].Amount != 3 {
		t.Fatalf("unexpected order: %+v", txs)
	}
}

func TestSavingGoalRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo)
	ctx := context.Background()

	now := time.Now().UTC()
	goal := core.SavingGoal{ID: uuid.NewString(), UserID: u.ID, TargetAmount: 500, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateSavingGoal(ctx, goal); err != nil {
		t.Fatalf("CreateSavingGoal: %v", err)
	}

	got, err := repo.GetSavingGoalByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetSavingGoalByUserID: %v", err)
	}
	if got.TargetAmount != 500 {
		t.Fatalf("target = %v, want 500", got.TargetAmount)
	}

	updated, err := repo.UpdateSavingGoal(ctx, goal.ID, 800)
	if err != nil {
		t.Fatalf("UpdateSavingGoal: %v", err)
	}
	if updated.TargetAmount != 800 {
		t.Fatalf("updated target = %v, want 800", updated.TargetAmount)
	}

	if _, err := repo.UpdateSavingGoal(ctx, uuid.NewString(), 100); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.GetSavingGoalByUserID(ctx, uuid.NewString()); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing goal, got %v", err)
	}
}

func TestSavingCategoryGoals(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo)
	ctx := context.Background()

	now := time.Now().UTC()
	g1 := core.SavingCategoryGoal{ID: uuid.NewString(), UserID: u.ID, Category: core.CategoryFood, TargetAmount: 200, CreatedAt: now, UpdatedAt: now}
	g2 := core.SavingCategoryGoal{ID: uuid.NewString(), UserID: u.ID, Category: core.CategoryRent, TargetAmount: 900, CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)}
	if err := repo.CreateSavingCategoryGoal(ctx, g1); err != nil {
		t.Fatalf("create g1: %v", err)
	}
	if err := repo.CreateSavingCategoryGoal(ctx, g2); err != nil {
		t.Fatalf("create g2: %v", err)
	}

	// One goal per (user, category).
	dup := core.SavingCategoryGoal{ID: uuid.NewString(), UserID: u.ID, Category: core.CategoryFood, TargetAmount: 10, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateSavingCategoryGoal(ctx, dup); err == nil {
		t.Fatal("expected unique constraint violation")
	}

	goals, err := repo.ListSavingCategoryGoals(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListSavingCategoryGoals: %v", err)
	}
	if len(goals) != 2 || goals[0].Category != core.CategoryFood {
		t.Fatalf("unexpected goals: %+v", goals)
	}

	updated, err := repo.UpdateSavingCategoryGoal(ctx, g2.ID, core.CategoryShopping, 300)
	if err != nil {
		t.Fatalf("UpdateSavingCategoryGoal: %v", err)
	}
	if updated.Category != core.CategoryShopping || updated.TargetAmount != 300 {
		t.Fatalf("updated = %+v", updated)
	}
}
