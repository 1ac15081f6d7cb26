package analytics

import (
	"fintrack/internal/core"
)

type (
	// CategoryTotal holds per-category sums split by transaction type.
	CategoryTotal struct {
		Category        core.Category `json:"category"`
		WithdrawalTotal float64       `json:"withdrawalTotal"`
		DepositTotal    float64       `json:"depositTotal"`
	}

	// GoalProgress combines a stored saving goal with amounts derived from
	// the user's withdrawals. The derived fields are never persisted.
	GoalProgress struct {
		Goal            core.SavingGoal
		ExpensesAmount  float64
		RemainingAmount float64
	}

	// CategoryGoalProgress is GoalProgress scoped to one category.
	CategoryGoalProgress struct {
		Goal            core.SavingCategoryGoal
		ExpensesAmount  float64
		RemainingAmount float64
	}
)

// ByCategory groups transactions by category and accumulates withdrawal and
// deposit totals separately. Only categories present in the input appear in
// the result, in order of first appearance.
func ByCategory(txs []core.Transaction) []CategoryTotal {
	idx := make(map[core.Category]int)
	totals := make([]CategoryTotal, 0)

	for _, tx := range txs {
		i, ok := idx[tx.Category]
		if !ok {
			i = len(totals)
			idx[tx.Category] = i
			totals = append(totals, CategoryTotal{Category: tx.Category})
		}
		switch tx.Type {
		case core.Withdrawal:
			totals[i].WithdrawalTotal += tx.Amount
		case core.Deposit:
			totals[i].DepositTotal += tx.Amount
		}
	}
	return totals
}

// EnrichGoal derives the expenses and remaining amounts for a saving goal
// from the user's withdrawal transactions. RemainingAmount may be negative:
// over-budget is a representable state, not an error.
func EnrichGoal(goal core.SavingGoal, txs []core.Transaction) GoalProgress {
	expenses := sumWithdrawals(txs, "")
	return GoalProgress{
		Goal:            goal,
		ExpensesAmount:  expenses,
		RemainingAmount: goal.TargetAmount - expenses,
	}
}

// EnrichCategoryGoal is EnrichGoal restricted to withdrawals in the goal's
// category.
func EnrichCategoryGoal(goal core.SavingCategoryGoal, txs []core.Transaction) CategoryGoalProgress {
	expenses := sumWithdrawals(txs, goal.Category)
	return CategoryGoalProgress{
		Goal:            goal,
		ExpensesAmount:  expenses,
		RemainingAmount: goal.TargetAmount - expenses,
	}
}

func sumWithdrawals(txs []core.Transaction, category core.Category) float64 {
	var sum float64
	for _, tx := range txs {
		if tx.Type != core.Withdrawal {
			continue
		}
		if category != "" && tx.Category != category {
			continue
		}
		sum += tx.Amount
	}
	return sum
}
