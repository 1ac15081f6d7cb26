package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

const (
	CategoryFood      Category = "Food"
	CategoryTransport Category = "Transport"
	CategoryRent      Category = "Rent"
	CategoryShopping  Category = "Shopping"
	CategoryOther     Category = "Other"
	CategoryIncome    Category = "Income"
)

type (
	TransactionType string

	Category string

	Transaction struct {
		ID        string
		UserID    string
		Amount    float64
		Type      TransactionType
		Category  Category
		CreatedAt time.Time
	}

	SavingGoal struct {
		ID           string
		UserID       string
		TargetAmount float64
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	SavingCategoryGoal struct {
		ID           string
		UserID       string
		Category     Category
		TargetAmount float64
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyUserID     = errors.New("empty user id")
)

// ParseTransactionType validates a raw type string against the closed enum.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Deposit:
		return Deposit, nil
	case Withdrawal:
		return Withdrawal, nil
	}
	return "", ErrInvalidType
}

// ParseCategory validates a raw category string against the closed enum.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	switch c {
	case CategoryFood, CategoryTransport, CategoryRent, CategoryShopping, CategoryOther, CategoryIncome:
		return c, nil
	}
	return "", ErrInvalidCategory
}

func (t TransactionType) Validate() error {
	switch t {
	case Deposit, Withdrawal:
		return nil
	}
	return ErrInvalidType
}

func (c Category) Validate() error {
	_, err := ParseCategory(string(c))
	return err
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	return t.Category.Validate()
}

func (g SavingGoal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrEmptyUserID
	}
	if g.TargetAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g SavingCategoryGoal) Validate() error {
	if strings.TrimSpace(g.UserID) == "" {
		return ErrEmptyUserID
	}
	if g.TargetAmount < 0 {
		return ErrInvalidAmount
	}
	return g.Category.Validate()
}
