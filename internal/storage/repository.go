package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// Repository persists users, transactions and saving goals in SQLite.
// Period filtering happens here, at the data-access boundary: callers pass
// the range resolved by analytics.ResolveRange and the SQL does the rest.
type Repository struct {
	db *sql.DB
}

// TransactionFilter narrows a transaction listing. Zero values mean
// "no constraint"; an empty UserID lists across all users.
type TransactionFilter struct {
	UserID   string
	Type     core.TransactionType
	Category core.Category
	Range    *analytics.Range
}

// Page requests one page of a listing. A zero Limit disables paging.
type Page struct {
	Page  int
	Limit int
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var createdMs int64
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdMs).UTC()
	return u, nil
}

// --- transactions ---

func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount, type, category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, string(tx.Type), string(tx.Category), tx.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, type, category, created_at FROM transactions WHERE id = ?`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return txs[0], nil
}

// ListTransactions returns one page of matching transactions plus the total
// match count. Results come back in creation order so downstream folds see
// the natural insertion order.
func (r *Repository) ListTransactions(ctx context.Context, f TransactionFilter, p Page) ([]core.Transaction, int, error) {
	where, args := buildFilter(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT id, user_id, amount, type, category, created_at FROM transactions` +
		where + ` ORDER BY created_at ASC, id ASC`
	if p.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, p.Limit, (p.Page-1)*p.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// RecentTransactions returns the newest transactions for a user, newest
// first.
func (r *Repository) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, type, category, created_at FROM transactions
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func buildFilter(f TransactionFilter) (string, []any) {
	var conds []string
	var args []any

	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Range != nil {
		conds = append(conds, "created_at >= ?", "created_at <= ?")
		args = append(args, f.Range.Start.UTC().UnixMilli(), f.Range.End.UTC().UnixMilli())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	txs := make([]core.Transaction, 0)
	for rows.Next() {
		var tx core.Transaction
		var typ, cat string
		var createdMs int64
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &typ, &cat, &createdMs); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		tx.Category = core.Category(cat)
		tx.CreatedAt = time.UnixMilli(createdMs).UTC()
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// --- saving goals ---

func (r *Repository) CreateSavingGoal(ctx context.Context, g core.SavingGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saving_goals (id, user_id, target_amount, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.TargetAmount, g.CreatedAt.UTC().UnixMilli(), g.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("create saving goal: %w", err)
	}
	return nil
}

func (r *Repository) GetSavingGoalByUserID(ctx context.Context, userID string) (core.SavingGoal, error) {
	var g core.SavingGoal
	var createdMs, updatedMs int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, target_amount, created_at, updated_at FROM saving_goals WHERE user_id = ?`,
		userID).Scan(&g.ID, &g.UserID, &g.TargetAmount, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingGoal{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("get saving goal: %w", err)
	}
	g.CreatedAt = time.UnixMilli(createdMs).UTC()
	g.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return g, nil
}

// UpdateSavingGoal sets a new target amount and returns the updated goal.
func (r *Repository) UpdateSavingGoal(ctx context.Context, id string, targetAmount float64) (core.SavingGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE saving_goals SET target_amount = ?, updated_at = ? WHERE id = ?`,
		targetAmount, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("update saving goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.SavingGoal{}, core.ErrNotFound
	}

	var g core.SavingGoal
	var createdMs, updatedMs int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id, user_id, target_amount, created_at, updated_at FROM saving_goals WHERE id = ?`,
		id).Scan(&g.ID, &g.UserID, &g.TargetAmount, &createdMs, &updatedMs)
	if err != nil {
		return core.SavingGoal{}, fmt.Errorf("reload saving goal: %w", err)
	}
	g.CreatedAt = time.UnixMilli(createdMs).UTC()
	g.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return g, nil
}

// ListSavingGoals returns every saving goal across users. Used by the
// periodic budget scan.
func (r *Repository) ListSavingGoals(ctx context.Context) ([]core.SavingGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, target_amount, created_at, updated_at FROM saving_goals ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}
	defer rows.Close()

	goals := make([]core.SavingGoal, 0)
	for rows.Next() {
		var g core.SavingGoal
		var createdMs, updatedMs int64
		if err := rows.Scan(&g.ID, &g.UserID, &g.TargetAmount, &createdMs, &updatedMs); err != nil {
			return nil, fmt.Errorf("scan saving goal: %w", err)
		}
		g.CreatedAt = time.UnixMilli(createdMs).UTC()
		g.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saving goals: %w", err)
	}
	return goals, nil
}

// --- saving category goals ---

func (r *Repository) CreateSavingCategoryGoal(ctx context.Context, g core.SavingCategoryGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saving_category_goals (id, user_id, category, target_amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, string(g.Category), g.TargetAmount,
		g.CreatedAt.UTC().UnixMilli(), g.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("create saving category goal: %w", err)
	}
	return nil
}

func (r *Repository) ListSavingCategoryGoals(ctx context.Context, userID string) ([]core.SavingCategoryGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, target_amount, created_at, updated_at
		 FROM saving_category_goals WHERE user_id = ? ORDER BY created_at ASC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list saving category goals: %w", err)
	}
	defer rows.Close()

	return scanCategoryGoals(rows)
}

func scanCategoryGoals(rows *sql.Rows) ([]core.SavingCategoryGoal, error) {
	goals := make([]core.SavingCategoryGoal, 0)
	for rows.Next() {
		var g core.SavingCategoryGoal
		var cat string
		var createdMs, updatedMs int64
		if err := rows.Scan(&g.ID, &g.UserID, &cat, &g.TargetAmount, &createdMs, &updatedMs); err != nil {
			return nil, fmt.Errorf("scan saving category goal: %w", err)
		}
		g.Category = core.Category(cat)
		g.CreatedAt = time.UnixMilli(createdMs).UTC()
		g.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saving category goals: %w", err)
	}
	return goals, nil
}

// ListAllSavingCategoryGoals returns every category goal across users.
// Used by the periodic budget scan.
func (r *Repository) ListAllSavingCategoryGoals(ctx context.Context) ([]core.SavingCategoryGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, target_amount, created_at, updated_at
		 FROM saving_category_goals ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all saving category goals: %w", err)
	}
	defer rows.Close()

	return scanCategoryGoals(rows)
}

// UpdateSavingCategoryGoal sets a new category and/or target amount and
// returns the updated goal.
func (r *Repository) UpdateSavingCategoryGoal(ctx context.Context, id string, category core.Category, targetAmount float64) (core.SavingCategoryGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE saving_category_goals SET category = ?, target_amount = ?, updated_at = ? WHERE id = ?`,
		string(category), targetAmount, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return core.SavingCategoryGoal{}, fmt.Errorf("update saving category goal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.SavingCategoryGoal{}, core.ErrNotFound
	}

	var g core.SavingCategoryGoal
	var cat string
	var createdMs, updatedMs int64
	err = r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category, target_amount, created_at, updated_at
		 FROM saving_category_goals WHERE id = ?`,
		id).Scan(&g.ID, &g.UserID, &cat, &g.TargetAmount, &createdMs, &updatedMs)
	if err != nil {
		return core.SavingCategoryGoal{}, fmt.Errorf("reload saving category goal: %w", err)
	}
	g.Category = core.Category(cat)
	g.CreatedAt = time.UnixMilli(createdMs).UTC()
	g.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return g, nil
}
