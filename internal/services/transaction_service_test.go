package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

type fakeStore struct {
	txs       []core.Transaction
	goal      *core.SavingGoal
	catGoals  []core.SavingCategoryGoal
	createErr error
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx core.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	for _, tx := range f.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context, filter storage.TransactionFilter, p storage.Page) ([]core.Transaction, int, error) {
	matched := make([]core.Transaction, 0)
	for _, tx := range f.txs {
		if filter.UserID != "" && tx.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Range != nil && !filter.Range.Contains(tx.CreatedAt) {
			continue
		}
		matched = append(matched, tx)
	}
	total := len(matched)
	if p.Limit > 0 {
		start := (p.Page - 1) * p.Limit
		if start > total {
			start = total
		}
		end := start + p.Limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (f *fakeStore) RecentTransactions(_ context.Context, userID string, limit int) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0)
	for i := len(f.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.txs[i].UserID == userID {
			out = append(out, f.txs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSavingGoal(_ context.Context, g core.SavingGoal) error {
	f.goal = &g
	return nil
}

func (f *fakeStore) GetSavingGoalByUserID(_ context.Context, userID string) (core.SavingGoal, error) {
	if f.goal == nil || f.goal.UserID != userID {
		return core.SavingGoal{}, core.ErrNotFound
	}
	return *f.goal, nil
}

func (f *fakeStore) UpdateSavingGoal(_ context.Context, id string, targetAmount float64) (core.SavingGoal, error) {
	if f.goal == nil || f.goal.ID != id {
		return core.SavingGoal{}, core.ErrNotFound
	}
	f.goal.TargetAmount = targetAmount
	return *f.goal, nil
}

func (f *fakeStore) CreateSavingCategoryGoal(_ context.Context, g core.SavingCategoryGoal) error {
	f.catGoals = append(f.catGoals, g)
	return nil
}

func (f *fakeStore) ListSavingCategoryGoals(_ context.Context, userID string) ([]core.SavingCategoryGoal, error) {
	out := make([]core.SavingCategoryGoal, 0)
	for _, g := range f.catGoals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateSavingCategoryGoal(_ context.Context, id string, category core.Category, targetAmount float64) (core.SavingCategoryGoal, error) {
	for i := range f.catGoals {
		if f.catGoals[i].ID == id {
			f.catGoals[i].Category = category
			f.catGoals[i].TargetAmount = targetAmount
			return f.catGoals[i], nil
		}
	}
	return core.SavingCategoryGoal{}, core.ErrNotFound
}

type fakePublisher struct {
	published []*amqp.TransactionCreatedMessage
	err       error
}

func (f *fakePublisher) PublishTransactionCreated(_ context.Context, msg *amqp.TransactionCreatedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func testLogger() *applog.Logger {
	return applog.New(applog.DefaultConfig())
}

func TestCreatePublishesEvent(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil, testLogger())

	tx, err := svc.Create(context.Background(), core.Transaction{
		UserID:   "user-1",
		Amount:   50,
		Type:     core.Withdrawal,
		Category: core.CategoryFood,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID == "" || tx.CreatedAt.IsZero() {
		t.Fatalf("id and timestamp should be assigned: %+v", tx)
	}
	if len(pub.published) != 1 || pub.published[0].ID != tx.ID {
		t.Fatalf("expected one published event for %s, got %+v", tx.ID, pub.published)
	}
}

func TestCreatePublishFailureDoesNotFailRequest(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub, nil, testLogger())

	if _, err := svc.Create(context.Background(), core.Transaction{
		UserID: "user-1", Amount: 50, Type: core.Withdrawal, Category: core.CategoryFood,
	}); err != nil {
		t.Fatalf("Create should succeed despite publish failure: %v", err)
	}
	if len(store.txs) != 1 {
		t.Fatalf("transaction should still be saved")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := NewTransactionService(&fakeStore{}, nil, nil, testLogger())

	cases := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"negative amount", core.Transaction{UserID: "u", Amount: -1, Type: core.Withdrawal, Category: core.CategoryFood}, core.ErrInvalidAmount},
		{"bad type", core.Transaction{UserID: "u", Amount: 1, Type: "transfer", Category: core.CategoryFood}, core.ErrInvalidType},
		{"bad category", core.Transaction{UserID: "u", Amount: 1, Type: core.Deposit, Category: "Gambling"}, core.ErrInvalidCategory},
		{"missing user", core.Transaction{Amount: 1, Type: core.Deposit, Category: core.CategoryFood}, core.ErrEmptyUserID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.tx); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestListEmptyIsNotFound(t *testing.T) {
	svc := NewTransactionService(&fakeStore{}, nil, nil, testLogger())

	_, _, err := svc.List(context.Background(), storage.TransactionFilter{UserID: "user-1"}, 1, 10)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty listing, got %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	store := &fakeStore{}
	now := time.Now()
	for i := 0; i < 5; i++ {
		store.txs = append(store.txs, core.Transaction{
			ID: "tx", UserID: "user-1", Amount: 10,
			Type: core.Withdrawal, Category: core.CategoryFood,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}
	svc := NewTransactionService(store, nil, nil, testLogger())

	txs, meta, err := svc.List(context.Background(), storage.TransactionFilter{UserID: "user-1"}, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("page size = %d, want 2", len(txs))
	}
	want := analytics.PaginationMeta{Page: 2, Limit: 2, TotalItems: 5, TotalPages: 3}
	if meta != want {
		t.Fatalf("meta = %+v, want %+v", meta, want)
	}
}

func TestReportUsesCache(t *testing.T) {
	store := &fakeStore{}
	monday := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	store.txs = append(store.txs,
		core.Transaction{UserID: "user-1", Amount: 200, Type: core.Deposit, Category: core.CategoryIncome, CreatedAt: monday},
		core.Transaction{UserID: "user-1", Amount: 50, Type: core.Withdrawal, Category: core.CategoryFood, CreatedAt: monday},
	)

	reportCache := cache.NewLRUCache[analytics.Report](16, time.Minute)
	svc := NewTransactionService(store, nil, reportCache, testLogger())

	first, err := svc.Report(context.Background(), "user-1", analytics.PeriodWeek, monday)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if first.IncomeVsExpenses.Income != 200 || first.IncomeVsExpenses.Expenses != 50 {
		t.Fatalf("unexpected report: %+v", first)
	}

	// Writes after caching are not visible until the TTL lapses.
	store.txs = append(store.txs,
		core.Transaction{UserID: "user-1", Amount: 999, Type: core.Withdrawal, Category: core.CategoryRent, CreatedAt: monday})

	second, err := svc.Report(context.Background(), "user-1", analytics.PeriodWeek, monday)
	if err != nil {
		t.Fatalf("Report (cached): %v", err)
	}
	if second.IncomeVsExpenses.Expenses != 50 {
		t.Fatalf("expected cached report, got %+v", second)
	}
}

func TestReportEmptyIsZeroNotError(t *testing.T) {
	svc := NewTransactionService(&fakeStore{}, nil, nil, testLogger())
	monday := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	report, err := svc.Report(context.Background(), "user-1", analytics.PeriodWeek, monday)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.IncomeVsExpenses.Income != 0 || report.SavingRate != 0 {
		t.Fatalf("expected zero report, got %+v", report)
	}
	if report.TopSpendingDay.Weekday != 1 {
		t.Fatalf("empty report should fall back to the anchor weekday, got %+v", report.TopSpendingDay)
	}
}

func TestTotalsByCategoryScopedToRange(t *testing.T) {
	store := &fakeStore{}
	monday := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	store.txs = append(store.txs,
		core.Transaction{UserID: "user-1", Amount: 50, Type: core.Withdrawal, Category: core.CategoryFood, CreatedAt: monday},
		// Outside the week.
		core.Transaction{UserID: "user-1", Amount: 75, Type: core.Withdrawal, Category: core.CategoryFood, CreatedAt: monday.AddDate(0, 1, 0)},
	)
	svc := NewTransactionService(store, nil, nil, testLogger())

	totals, err := svc.TotalsByCategory(context.Background(), "user-1", analytics.PeriodWeek, monday)
	if err != nil {
		t.Fatalf("TotalsByCategory: %v", err)
	}
	if len(totals) != 1 || totals[0].WithdrawalTotal != 50 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
