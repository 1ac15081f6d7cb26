package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"

	"github.com/google/uuid"
)

// TransactionStore is the repository surface the transaction service uses.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) error
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter, p storage.Page) ([]core.Transaction, int, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
}

// EventPublisher publishes transaction events. Nil-able: deployments without
// a broker run with publishing disabled.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error
}

// TransactionService orchestrates transaction writes, listings and analytics.
// Reports are cached with a short TTL; staleness is bounded by the TTL rather
// than invalidated on write, since report keys embed the resolved range.
type TransactionService struct {
	store       TransactionStore
	publisher   EventPublisher
	reportCache cache.Cache[analytics.Report]
	logger      *applog.Logger
}

func NewTransactionService(store TransactionStore, publisher EventPublisher, reportCache cache.Cache[analytics.Report], logger *applog.Logger) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		reportCache: reportCache,
		logger:      logger.WithComponent(applog.ComponentTransaction),
	}
}

// Create validates and persists a transaction, then publishes an event for
// the budget alert worker. Publish failures do not fail the request.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, amqp.NewTransactionCreatedMessage(tx)); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish transaction event",
				applog.FieldTxID, tx.ID,
				applog.FieldError, err)
		}
	}

	s.logger.InfoContext(ctx, "transaction created",
		applog.FieldTxID, tx.ID,
		applog.FieldUserID, tx.UserID,
		applog.FieldAmount, tx.Amount,
		applog.FieldTxType, string(tx.Type))
	return tx, nil
}

// List returns one page of matching transactions with pagination metadata.
// An empty result is reported as core.ErrNotFound.
func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter, page, limit int) ([]core.Transaction, analytics.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}

	txs, total, err := s.store.ListTransactions(ctx, f, storage.Page{Page: page, Limit: limit})
	if err != nil {
		return nil, analytics.PaginationMeta{}, fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, analytics.PaginationMeta{}, core.ErrNotFound
	}
	return txs, analytics.Paginate(total, page, limit), nil
}

// Recent returns the newest transactions for a user, newest first.
func (s *TransactionService) Recent(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	txs, err := s.store.RecentTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, core.ErrNotFound
	}
	return txs, nil
}

// TotalsByCategory folds a user's transactions in the resolved range into
// per-category withdrawal and deposit totals.
func (s *TransactionService) TotalsByCategory(ctx context.Context, userID string, period analytics.Period, anchor time.Time) ([]analytics.CategoryTotal, error) {
	txs, err := s.transactionsInRange(ctx, userID, period, anchor)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, core.ErrNotFound
	}
	return analytics.ByCategory(txs), nil
}

// Report builds the spending report for a user over the resolved range.
// Unlike listings, an empty range yields a zero-valued report, not an error.
func (s *TransactionService) Report(ctx context.Context, userID string, period analytics.Period, anchor time.Time) (analytics.Report, error) {
	r, ok := analytics.ResolveRange(period, anchor)

	key := reportCacheKey(userID, period, r, ok)
	if s.reportCache != nil {
		if cached, hit := s.reportCache.Get(key); hit {
			return cached, nil
		}
	}

	filter := storage.TransactionFilter{UserID: userID}
	if ok {
		filter.Range = &r
	}
	txs, _, err := s.store.ListTransactions(ctx, filter, storage.Page{})
	if err != nil {
		return analytics.Report{}, fmt.Errorf("load transactions for report: %w", err)
	}

	report := analytics.BuildReport(txs, period, anchor)

	if s.reportCache != nil {
		s.reportCache.Set(key, report)
	}
	return report, nil
}

func (s *TransactionService) transactionsInRange(ctx context.Context, userID string, period analytics.Period, anchor time.Time) ([]core.Transaction, error) {
	filter := storage.TransactionFilter{UserID: userID}
	if r, ok := analytics.ResolveRange(period, anchor); ok {
		filter.Range = &r
	}
	txs, _, err := s.store.ListTransactions(ctx, filter, storage.Page{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

func reportCacheKey(userID string, period analytics.Period, r analytics.Range, ok bool) string {
	if !ok {
		return userID + "|all"
	}
	return fmt.Sprintf("%s|%s|%d-%d", userID, period, r.Start.UnixMilli(), r.End.UnixMilli())
}
